package jsonschema

import "fmt"

// ValidationError is one keyword-level failure, anchored at a JSON-pointer
// path into the instance.
type ValidationError struct {
	Path    string
	Keyword string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Result is the outcome of validating one instance against one schema.
type Result struct {
	Valid  bool
	Errors map[string][]*ValidationError

	// EvaluatedProperties and EvaluatedItems record, at the root level,
	// which instance members were accounted for by some applied
	// subschema — consumed by unevaluatedProperties/unevaluatedItems at
	// any enclosing level (§4.7 cross-cutting requirements).
	EvaluatedProperties map[string]bool
	EvaluatedItems      map[int]bool
}

func newResult() *Result {
	return &Result{Valid: true, Errors: make(map[string][]*ValidationError)}
}

func (r *Result) fail(path, keyword, message string) {
	r.Valid = false
	r.Errors[path] = append(r.Errors[path], &ValidationError{Path: path, Keyword: keyword, Message: message})
}

// merge appends o's failures to r under their own paths (the path argument
// is not used), without touching r.Valid (composition keywords decide independently whether a
// branch's failure matters).
func (r *Result) merge(o *Result, _ string) {
	if o == nil {
		return
	}
	for path, errs := range o.Errors {
		r.Errors[path] = append(r.Errors[path], errs...)
	}
}
