package expr

import "fmt"

// SyntaxError reports a tokenizer or parser failure at a specific offset
// in the source expression, letting callers surface the exact column to
// whoever authored the calculated-column expression.
type SyntaxError struct {
	Pos     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: %s at offset %d", e.Message, e.Pos)
}
