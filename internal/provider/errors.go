package provider

import (
	"errors"
	"strings"

	"github.com/ovh/go-ovh/ovh"
)

// Kind classifies a provider error for the order workflow.
type Kind int

const (
	// KindHard is any provider or transport failure that should produce
	// a failed order record.
	KindHard Kind = iota
	// KindUnavailable means the provider confirmed the resource is
	// momentarily absent; retried, never recorded as a failure.
	KindUnavailable
)

// unavailablePattern is the provider's untyped way of saying the plan
// has no stock in the requested location. Kept as a boundary adapter
// translating raw message text into a structured kind.
const unavailablePattern = "is not available in"

// Classify maps a remote-call error onto the workflow's failure taxonomy.
func Classify(err error) Kind {
	var apiErr *ovh.APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, unavailablePattern) {
		return KindUnavailable
	}
	return KindHard
}

// IsUnavailable reports whether err is a soft-unavailability signal.
func IsUnavailable(err error) bool {
	return err != nil && Classify(err) == KindUnavailable
}
