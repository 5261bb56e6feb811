package compiler

import (
	"errors"
	"fmt"
)

var (
	// ErrUnbalancedBrackets indicates a close without an open scope, or a
	// scope left open at the end of a line.
	ErrUnbalancedBrackets = errors.New("unbalanced brackets")

	// ErrBracketMismatch indicates a close whose type differs from the
	// innermost open scope.
	ErrBracketMismatch = errors.New("bracket type mismatch")

	// ErrMisplacedElse indicates an Else that does not directly follow the
	// close of a conditional scope.
	ErrMisplacedElse = errors.New("else without a preceding closed conditional")
)

// BracketError reports where a line's bracket structure breaks.
type BracketError struct {
	Line  string // display name of the line
	Index int    // statement index, or len(statements) for unclosed scopes
	Want  BracketType
	Got   BracketType
	Err   error
}

func (e *BracketError) Error() string {
	switch {
	case e.Err == ErrMisplacedElse:
		return fmt.Sprintf("%s: statement %d: %v", e.Line, e.Index, e.Err)
	case e.Err == ErrBracketMismatch:
		return fmt.Sprintf("%s: statement %d closes %q scope, innermost open is %q", e.Line, e.Index, e.Got, e.Want)
	case e.Want != "":
		return fmt.Sprintf("%s: %q scope left open at end of line", e.Line, e.Want)
	default:
		return fmt.Sprintf("%s: statement %d closes %q scope with none open", e.Line, e.Index, e.Got)
	}
}

func (e *BracketError) Unwrap() error { return e.Err }

// Validate checks that every scope opened on the line is closed by a
// matching Close or CloseRepeat. Else must directly follow a closed
// conditional scope. Compilation does not call Validate.
func (l *CodeLine) Validate() error {
	var stack []BracketType
	var lastClosed BracketType
	for i, stmt := range l.Statements {
		if _, ok := stmt.(*Else); ok && lastClosed != BracketNorm {
			return &BracketError{Line: l.Name(), Index: i, Err: ErrMisplacedElse}
		}
		lastClosed = ""
		if typ, ok := Closes(stmt); ok {
			if len(stack) == 0 {
				return &BracketError{Line: l.Name(), Index: i, Got: typ, Err: ErrUnbalancedBrackets}
			}
			top := stack[len(stack)-1]
			if top != typ {
				return &BracketError{Line: l.Name(), Index: i, Want: top, Got: typ, Err: ErrBracketMismatch}
			}
			stack = stack[:len(stack)-1]
			lastClosed = typ
		}
		if typ, ok := Opens(stmt); ok {
			stack = append(stack, typ)
		}
	}
	if len(stack) > 0 {
		return &BracketError{Line: l.Name(), Index: len(l.Statements), Want: stack[len(stack)-1], Err: ErrUnbalancedBrackets}
	}
	return nil
}
