package resolver

import (
	"errors"
	"fmt"
)

// ErrSyntax indicates that an argument is not in the expected form.
var ErrSyntax = errors.New("invalid syntax")

// A SyntaxError records a malformed subpath or module specifier passed to a resolver function.
type SyntaxError struct {
	Func  string // the failing function (FindPathInExports, FindPkgData, ...)
	Input string // the input
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("resolver.%s: parsing %q: %s", e.Func, e.Input, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
