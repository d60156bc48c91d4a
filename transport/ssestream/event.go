// Package ssestream implements the WHATWG event-stream parsing algorithm
// (https://html.spec.whatwg.org/multipage/server-sent-events.html#parsing-an-event-stream)
// used by the streamable HTTP transport's response-attached and legacy SSE
// streams.
package ssestream

// Event is one dispatched server-sent event: a non-empty `data` buffer
// together with whichever `event`/`id` fields preceded the dispatching
// blank line.
type Event struct {
	// Name is the event type; "message" if no `event:` field was sent.
	Name string
	// Data is the event payload, `data:` lines joined by "\n" with the
	// single trailing newline stripped.
	Data string
	// LastEventID is the parser's last-event-id at the time this event was
	// dispatched (after applying this event's own `id:` field, if any).
	LastEventID string
}
