package flow

import "fmt"

// TypeError reports an element whose dynamic type does not match the
// element type a typed adapter expects.
type TypeError struct {
	Value any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("flow: unexpected element type %T", e.Value)
}
