package flux

import (
	"errors"
	"fmt"
)

// Construction failures fall into two categories: the settings snapshot is
// unusable, or the rendering device refused a resource. Callers can route on
// the category with errors.Is while the wrapped detail stays available.
var (
	ErrCannotReadSettings = errors.New("cannot read settings")
	ErrCannotRender       = errors.New("cannot render")
)

// Problem pairs a failure category with the error that triggered it.
type Problem struct {
	Kind error
	Err  error
}

func (p *Problem) Error() string {
	return fmt.Sprintf("%v: %v", p.Kind, p.Err)
}

func (p *Problem) Unwrap() error { return p.Err }

// Is matches the category, letting errors.Is find both the Kind sentinel
// and anything in the wrapped chain.
func (p *Problem) Is(target error) bool { return target == p.Kind }

func cannotReadSettings(err error) *Problem {
	return &Problem{Kind: ErrCannotReadSettings, Err: err}
}

func cannotRender(err error) *Problem {
	return &Problem{Kind: ErrCannotRender, Err: err}
}
