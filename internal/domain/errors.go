package domain

import (
	"errors"
	"fmt"
)

// ErrTransientFetch marks an external call that failed after the client's own
// retries were exhausted. The affected view is served partial rather than
// failing the whole refresh.
var ErrTransientFetch = errors.New("transient fetch failure")

// ErrMalformedOrder marks a raw order the normalizer could not turn into a
// canonical Order (no dispatch date, no line items, no resolvable name).
var ErrMalformedOrder = errors.New("malformed order")

// ConfigError is a startup-time configuration defect, such as a packaging
// tier table with gaps. It is fatal: the process must not serve numbers
// computed against a broken table.
type ConfigError struct {
	Component string
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: invalid configuration: %s", e.Component, e.Reason)
}

// TransientFetch wraps err so callers can match it with
// errors.Is(err, ErrTransientFetch).
func TransientFetch(source string, err error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrTransientFetch, err)
}
