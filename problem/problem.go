package problem

import "fmt"

// List contains a list of problems.
// The reaper is best-effort: an observed error is noted and the run
// continues, turning the "error" into a "problem" that is surfaced with the
// run summary instead of aborting the remaining work.
type List struct {
	errors []error
}

// Adds a problem to the list using fmt.Errorf
func (p *List) Add(format string, args ...interface{}) *List {
	p.errors = append(p.errors, fmt.Errorf(format, args...))
	return p
}

// Returns all added problems
func (p *List) Errors() []error {
	return p.errors
}

// Count returns the number of noted problems.
func (p *List) Count() int {
	return len(p.errors)
}

// Summary renders all problems as one line each, ready for the end-of-run
// report.
func (p *List) Summary() []string {
	lines := make([]string, 0, len(p.errors))
	for _, err := range p.errors {
		lines = append(lines, err.Error())
	}
	return lines
}
