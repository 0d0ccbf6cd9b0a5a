// Package diag holds the non-fatal findings parsers report alongside their results.
package diag

import "fmt"

type Warning struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
	Raw     string `json:"raw,omitempty"`
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// List accumulates warnings in the order they were found.
type List []Warning

// Addf records a warning. line is 1-based; zero means the finding is not tied to a line.
func (l *List) Addf(line int, raw string, format string, args ...any) {
	*l = append(*l, Warning{Line: line, Message: fmt.Sprintf(format, args...), Raw: raw})
}

func (l *List) Append(other List) {
	*l = append(*l, other...)
}

func (l List) Strings() []string {
	out := make([]string, 0, len(l))
	for _, w := range l {
		out = append(out, w.String())
	}
	return out
}
