package jsonschema

import (
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/yosida95/uritemplate/v3"
)

// formatCheckers maps a format name to a function reporting whether s
// conforms. Unknown format names are treated as annotations only (no
// validation failure), per the usual "format is advisory unless the
// implementation claims assertion support" JSON Schema stance; this
// validator claims assertion support for every name listed in spec §4.7.
var formatCheckers = map[string]func(s string, patterns *patternCache) bool{
	"email":                 checkEmail,
	"idn-email":             checkEmail,
	"uri":                   checkURI,
	"uri-reference":         checkURIReference,
	"iri":                   checkURI,
	"iri-reference":         checkURIReference,
	"uri-template":          checkURITemplate,
	"hostname":              checkHostname,
	"idn-hostname":          checkHostname,
	"ipv4":                  checkIPv4,
	"ipv6":                  checkIPv6,
	"uuid":                  checkUUID,
	"regex":                 checkRegex,
	"json-pointer":          checkJSONPointer,
	"relative-json-pointer": checkRelativeJSONPointer,
	"date":                  checkDate,
	"time":                  checkTime,
	"date-time":             checkDateTime,
	"duration":              checkDuration,
}

func checkEmail(s string, _ *patternCache) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func checkURI(s string, _ *patternCache) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func checkURIReference(s string, _ *patternCache) bool {
	_, err := url.Parse(s)
	return err == nil
}

func checkURITemplate(s string, _ *patternCache) bool {
	_, err := uritemplate.New(s)
	return err == nil
}

var hostnameLabel = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)

func checkHostname(s string, _ *patternCache) bool {
	if len(s) == 0 || len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(strings.TrimSuffix(s, "."), ".") {
		if !hostnameLabel.MatchString(label) {
			return false
		}
	}
	return true
}

func checkIPv4(s string, _ *patternCache) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil && strings.Count(s, ":") == 0
}

func checkIPv6(s string, _ *patternCache) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() == nil && strings.Contains(s, ":")
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func checkUUID(s string, _ *patternCache) bool {
	return uuidPattern.MatchString(s)
}

func checkRegex(s string, patterns *patternCache) bool {
	_, err := patterns.compile(s)
	return err == nil
}

func checkJSONPointer(s string, _ *patternCache) bool {
	if s == "" {
		return true
	}
	if !strings.HasPrefix(s, "/") {
		return false
	}
	for _, tok := range strings.Split(s[1:], "/") {
		for i := 0; i < len(tok); i++ {
			if tok[i] == '~' {
				if i+1 >= len(tok) || (tok[i+1] != '0' && tok[i+1] != '1') {
					return false
				}
			}
		}
	}
	return true
}

func checkRelativeJSONPointer(s string, cache *patternCache) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return false
	}
	rest := s[i:]
	if rest == "#" {
		return true
	}
	return checkJSONPointer(rest, cache)
}

func checkDate(s string, _ *patternCache) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func checkTime(s string, _ *patternCache) bool {
	for _, layout := range []string{"15:04:05Z07:00", "15:04:05.999999999Z07:00"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func checkDateTime(s string, _ *patternCache) bool {
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}

// durationPattern implements the ISO 8601 duration grammar RFC 3339
// Appendix A restates for the "duration" format.
var durationPattern = regexp.MustCompile(`^P(?:\d+W|(?:\d+Y)?(?:\d+M)?(?:\d+D)?(?:T(?:\d+H)?(?:\d+M)?(?:\d+(?:\.\d+)?S)?)?)$`)

func checkDuration(s string, _ *patternCache) bool {
	if !durationPattern.MatchString(s) || s == "P" || s == "PT" {
		return false
	}
	return true
}
