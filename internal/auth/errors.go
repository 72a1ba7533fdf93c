package auth

import "errors"

var (
	// Provider errors
	ErrProviderExchange = errors.New("provider token exchange failed")
	ErrProviderUserInfo = errors.New("failed to fetch userinfo from provider")
)

// GenericErrorMessage is the flattened user-facing message for every
// failure that must not leak internal detail.
const GenericErrorMessage = "An error occurred while processing your request."

// ValidationError carries a message that is safe to show to the end
// user. Everything else is flattened to GenericErrorMessage.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError wraps a user-safe message as a validation fault.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// UserMessage maps an error to the message surfaced in the error
// redirect: validation faults verbatim, everything else generic.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return GenericErrorMessage
}
