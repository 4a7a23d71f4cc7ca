package cosched

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// PanicError reports a panic raised inside a coroutine. The coroutine is
// finished and released by the time the error is returned.
type PanicError struct {
	ID    ID
	Value any
	stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("cosched: coroutine %d panicked: %v", p.ID, p.Value)
}

// Stack returns the stack trace captured when the panic was recovered.
func (p *PanicError) Stack() []byte {
	return p.stack
}

func (p *PanicError) ErrorWithStack() string {
	return fmt.Sprintf("%s\n\n%s", p.Error(), p.stack)
}

func (p *PanicError) Unwrap() error {
	err, ok := p.Value.(error)
	if !ok {
		return nil
	}
	return err
}

// DebugString renders the error chain one error per line, each nested
// error indented under the one wrapping it. A PanicError is labelled with
// its coroutine and followed by its stack. Errors seen before, as in a
// cycle, are skipped.
func (p *PanicError) DebugString() string {
	var sb strings.Builder
	seen := make(map[error]bool)

	var walk func(e error, depth int)
	walk = func(e error, depth int) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true

		indent := strings.Repeat("  ", depth)
		if pe, ok := e.(*PanicError); ok {
			fmt.Fprintf(&sb, "%s[coroutine %d] panic: %v\n", indent, pe.ID, pe.Value)
			if len(pe.stack) > 0 {
				for _, line := range strings.Split(strings.TrimRight(string(pe.stack), "\n"), "\n") {
					fmt.Fprintf(&sb, "%s  | %s\n", indent, line)
				}
			}
		} else {
			fmt.Fprintf(&sb, "%s%s\n", indent, e.Error())
		}

		if multi, ok := e.(interface{ Unwrap() []error }); ok {
			for _, ue := range multi.Unwrap() {
				walk(ue, depth+1)
			}
			return
		}
		walk(errors.Unwrap(e), depth+1)
	}

	walk(p, 0)
	return sb.String()
}

func newPanicError(id ID, v any) *PanicError {
	return &PanicError{
		ID:    id,
		Value: v,
		stack: debug.Stack(),
	}
}
