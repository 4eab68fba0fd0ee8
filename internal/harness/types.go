package harness

import (
	"fmt"
	"strings"
)

// Result contains the outcome of running a scenario.
type Result struct {
	// Pass is true if every step behaved as expected and every expectation
	// held.
	Pass bool

	// Steps records what each step did, in order.
	Steps []StepResult

	// Errors lists every failure. Empty when Pass is true.
	Errors []string
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index  int
	Op     string
	Detail string
	Err    error
}

// NewResult creates a new passing Result.
func NewResult() *Result {
	return &Result{Pass: true, Steps: []StepResult{}, Errors: []string{}}
}

// AddError marks the result as failed and records the message.
func (r *Result) AddError(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns the errors joined one per line.
func (r *Result) Summary() string {
	return strings.Join(r.Errors, "\n")
}
