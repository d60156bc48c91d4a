package jsonschema

import (
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultPatternTimeout is the per-match timeout applied to every regex
// keyword (pattern, patternProperties, propertyNames, format: regex),
// guarding against catastrophic backtracking (§4.7, §8).
const DefaultPatternTimeout = 100 * time.Millisecond

// patternCache avoids recompiling the same pattern string across many
// validate calls against the same schema.
type patternCache struct {
	mu      sync.Mutex
	timeout time.Duration
	entries map[string]*regexp2.Regexp
}

func newPatternCache(timeout time.Duration) *patternCache {
	if timeout <= 0 {
		timeout = DefaultPatternTimeout
	}
	return &patternCache{timeout: timeout, entries: make(map[string]*regexp2.Regexp)}
}

func (c *patternCache) compile(pattern string) (*regexp2.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.entries[pattern]; ok {
		return re, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.RE2)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = c.timeout
	c.entries[pattern] = re
	return re, nil
}

// matchResult is the outcome of a timed regex match: matched, or an error
// that is either a compile failure or a ReDoS timeout.
type matchResult int

const (
	matchNo matchResult = iota
	matchYes
	matchRedosTimeout
	matchInvalidPattern
)

// match runs pattern against s under the cache's configured timeout. A
// timeout is reported distinctly from a non-match so callers can surface
// redos-timeout per spec §7 rather than silently treating it as valid.
func (c *patternCache) match(pattern, s string) matchResult {
	re, err := c.compile(pattern)
	if err != nil {
		return matchInvalidPattern
	}
	ok, err := re.MatchString(s)
	if err != nil {
		if err == regexp2.ErrTimeout {
			return matchRedosTimeout
		}
		return matchInvalidPattern
	}
	if ok {
		return matchYes
	}
	return matchNo
}
