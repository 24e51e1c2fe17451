package robots

import (
	"errors"
	"fmt"
)

// ErrAccessDenied matches every *AccessDeniedError via errors.Is.
var ErrAccessDenied = errors.New("access denied by origin")

// Layer identifies which policy layer produced a decision.
type Layer int

const (
	// LayerSite is the site-wide robots.txt exclusion file.
	LayerSite Layer = iota
	// LayerPage is the page-level X-Robots-Tag header and robots meta elements.
	LayerPage
)

// String returns "site-level" or "page-level".
func (l Layer) String() string {
	switch l {
	case LayerSite:
		return "site-level"
	case LayerPage:
		return "page-level"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a single policy evaluation.
type Decision struct {
	// Allowed reports whether the agent may proceed.
	Allowed bool
	// Layer is the layer that produced the decision.
	Layer Layer
}

// AccessDeniedError is returned when an origin's crawl policy denies access.
type AccessDeniedError struct {
	// Layer is the policy layer that denied access.
	Layer Layer

	// Origin is the queried origin: the authority for site-level denials and
	// the page URL for page-level denials.
	Origin string

	// ByPolicy is true when the denial comes from a robots policy rather than
	// from the transport (for example an authentication failure).
	ByPolicy bool
}

// Error implements the error interface.
func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access to %s denied by %s crawl policy", e.Origin, e.Layer)
}

// Is reports whether target is ErrAccessDenied.
func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

// IsAccessDenied reports whether err is, or wraps, an access denial.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// Decide converts the result of a guard check into a Decision. A nil error
// is an allow decision; an access denial is a deny decision of its layer.
// Any other error is not a decision, and ok is false.
func Decide(err error) (d Decision, ok bool) {
	if err == nil {
		return Decision{Allowed: true}, true
	}
	var ade *AccessDeniedError
	if errors.As(err, &ade) {
		return Decision{Allowed: false, Layer: ade.Layer}, true
	}
	return Decision{}, false
}

// denied builds a policy denial for the given layer and origin.
func denied(layer Layer, origin string) error {
	return &AccessDeniedError{Layer: layer, Origin: origin, ByPolicy: true}
}
