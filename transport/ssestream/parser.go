package ssestream

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parser implements the WHATWG event-stream parsing algorithm. It is
// restartable: create one Parser per logical stream and reuse it across
// reconnects so LastEventID() survives, unless Reset is called.
type Parser struct {
	lastEventID string
	idBuffer    string

	eventType string
	data      strings.Builder
	dataSeen  bool

	retryMs int64

	// OnRetry, if set, is invoked whenever the peer sends a valid `retry:`
	// field, with the requested reconnection delay in milliseconds.
	OnRetry func(ms int64)
}

// NewParser creates a Parser with no prior last-event-id.
func NewParser() *Parser {
	return &Parser{}
}

// LastEventID returns the most recently dispatched event's id, or the id
// restored via SetLastEventID, persisted across reconnects.
func (p *Parser) LastEventID() string {
	return p.lastEventID
}

// SetLastEventID seeds the last-event-id, typically when resuming a stream
// after a reconnect using a previously observed id.
func (p *Parser) SetLastEventID(id string) {
	p.lastEventID = id
	p.idBuffer = id
}

// Reset clears the last-event-id, as if this were a fresh stream.
func (p *Parser) Reset() {
	p.lastEventID = ""
	p.idBuffer = ""
}

// Run reads r until EOF or ctx cancellation, splitting it into lines per the
// LF/CR/CRLF rule, and sends each dispatched Event on events. It returns nil
// on a clean EOF, ctx.Err() on cancellation, or the underlying read error.
func (p *Parser) Run(ctx context.Context, r io.Reader, events chan<- *Event) error {
	br := bufio.NewReader(r)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := readLine(br)
		if line != nil {
			if ev, ok := p.ProcessLine(line); ok {
				select {
				case events <- ev:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// ProcessLine feeds one line (without its terminator) into the parser's
// field-processing/dispatch state machine. It returns the dispatched Event
// and true if the line was a blank line that completed a non-empty event.
func (p *Parser) ProcessLine(line []byte) (*Event, bool) {
	if !utf8.Valid(line) {
		return nil, false
	}

	if len(line) == 0 {
		return p.dispatch()
	}
	if line[0] == ':' {
		return nil, false
	}

	field, value := splitField(line)
	switch field {
	case "event":
		p.eventType = value
	case "data":
		p.data.WriteString(value)
		p.data.WriteByte('\n')
		p.dataSeen = true
	case "id":
		if !strings.ContainsRune(value, '\x00') {
			p.idBuffer = value
		}
	case "retry":
		if isAllDigits(value) {
			if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
				p.retryMs = ms
				if p.OnRetry != nil {
					p.OnRetry(ms)
				}
			}
		}
	}
	return nil, false
}

func (p *Parser) dispatch() (*Event, bool) {
	if !p.dataSeen {
		p.eventType = ""
		return nil, false
	}

	data := p.data.String()
	data = strings.TrimSuffix(data, "\n")

	p.lastEventID = p.idBuffer

	name := p.eventType
	if name == "" {
		name = "message"
	}

	ev := &Event{Name: name, Data: data, LastEventID: p.lastEventID}

	p.data.Reset()
	p.dataSeen = false
	p.eventType = ""

	return ev, true
}

func splitField(line []byte) (field, value string) {
	s := string(line)
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return s, ""
	}
	field = s[:idx]
	value = s[idx+1:]
	value = strings.TrimPrefix(value, " ")
	return field, value
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// readLine reads one line from br, terminated by LF, CR, or CRLF, and
// returns it without the terminator. A nil slice with a non-nil error means
// no further data is available (typically io.EOF). A trailing line with no
// terminator (EOF reached mid-line) is returned along with io.EOF.
func readLine(br *bufio.Reader) ([]byte, error) {
	line := []byte{}
	for {
		b, err := br.ReadByte()
		if err != nil {
			if len(line) > 0 {
				return line, err
			}
			return nil, err
		}
		switch b {
		case '\n':
			return line, nil
		case '\r':
			next, err := br.ReadByte()
			if err == nil && next != '\n' {
				_ = br.UnreadByte()
			}
			return line, nil
		default:
			line = append(line, b)
		}
	}
}
