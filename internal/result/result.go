// Package result reports whether an event handler changed state.
package result

// Result is the outcome of a handler that did not fail. Handlers return an
// error only for store or chain I/O failures; a missing precondition such as
// an unknown pool is a skip.
// Reason is a fixed code safe to use as a metric label; Detail carries the
// input-dependent text.
type Result struct {
	Applied bool
	Reason  string
	Detail  string
}

// Applied marks a handler that persisted its changes.
func Applied() Result {
	return Result{Applied: true}
}

// Skip marks a handler that returned early without a full update.
func Skip(reason string) Result {
	return Result{Reason: reason}
}

// SkipDetail is Skip with event-specific text kept out of the reason.
func SkipDetail(reason, detail string) Result {
	return Result{Reason: reason, Detail: detail}
}

func (r Result) String() string {
	if r.Applied {
		return "applied"
	}
	if r.Detail != "" {
		return "skipped: " + r.Reason + ": " + r.Detail
	}
	return "skipped: " + r.Reason
}
