package dxtpkg

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substContext carries the values available for ${...} substitution.
type substContext struct {
	Dirname       string
	Home          string
	Desktop       string
	Documents     string
	Downloads     string
	PathSeparator string
	UserConfig    map[string]any
	ArrayJoin     string
}

// newSubstContext builds a substContext rooted at the DXT directory, using
// the current user's standard directories.
func newSubstContext(dxtDir string, userConfig map[string]any) (*substContext, error) {
	abs, err := filepath.Abs(dxtDir)
	if err != nil {
		return nil, err
	}
	home, _ := os.UserHomeDir()
	return &substContext{
		Dirname:       abs,
		Home:          home,
		Desktop:       filepath.Join(home, "Desktop"),
		Documents:     filepath.Join(home, "Documents"),
		Downloads:     filepath.Join(home, "Downloads"),
		PathSeparator: string(os.PathSeparator),
		UserConfig:    userConfig,
		ArrayJoin:     " ",
	}, nil
}

// substituteString expands every ${...} token in s. Unknown tokens are left
// untouched literally, per spec §4.5 step 5.
func (c *substContext) substituteString(s string) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		inner := token[2 : len(token)-1]
		if resolved, ok := c.resolve(inner); ok {
			return resolved
		}
		return token
	})
}

func (c *substContext) resolve(inner string) (string, bool) {
	switch inner {
	case "__dirname":
		return c.Dirname, true
	case "HOME":
		return c.Home, true
	case "DESKTOP":
		return c.Desktop, true
	case "DOCUMENTS":
		return c.Documents, true
	case "DOWNLOADS":
		return c.Downloads, true
	case "pathSeparator", "/":
		return c.PathSeparator, true
	}
	const prefix = "user_config."
	if strings.HasPrefix(inner, prefix) {
		key := strings.TrimPrefix(inner, prefix)
		if value, ok := c.UserConfig[key]; ok {
			return stringifyConfigValue(value, c.ArrayJoin), true
		}
	}
	return "", false
}

// userConfigArrayToken, if s is exactly "${user_config.<key>}" and that key
// holds an array value, returns the array's elements stringified; the
// caller expands the containing argument into one per element.
func (c *substContext) userConfigArrayToken(s string) ([]string, bool) {
	matches := tokenPattern.FindStringSubmatch(s)
	if matches == nil || matches[0] != s {
		return nil, false
	}
	inner := matches[1]
	const prefix = "user_config."
	if !strings.HasPrefix(inner, prefix) {
		return nil, false
	}
	key := strings.TrimPrefix(inner, prefix)
	value, ok := c.UserConfig[key]
	if !ok {
		return nil, false
	}
	return asStringSlice(value)
}

func asStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, len(v))
		for i, elem := range v {
			out[i] = fmt.Sprintf("%v", elem)
		}
		return out, true
	default:
		return nil, false
	}
}

func stringifyConfigValue(value any, arrayJoin string) string {
	if arr, ok := asStringSlice(value); ok {
		return strings.Join(arr, arrayJoin)
	}
	return fmt.Sprintf("%v", value)
}

// expandArgs substitutes ${...} tokens across args. An arg that is exactly
// one ${user_config.<key>} token referencing an array value expands into
// one argument per element (spec §4.5 step 5, scenario 5).
func expandArgs(args []string, ctx *substContext) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if elems, ok := ctx.userConfigArrayToken(arg); ok {
			out = append(out, elems...)
			continue
		}
		out = append(out, ctx.substituteString(arg))
	}
	return out
}

// expandEnv substitutes ${...} tokens across env values, joining array
// user-config values with the platform path-list separator.
func expandEnv(env map[string]string, ctx *substContext) map[string]string {
	if env == nil {
		return nil
	}
	envCtx := *ctx
	envCtx.ArrayJoin = string(os.PathListSeparator)
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = envCtx.substituteString(v)
	}
	return out
}
