package errs

import (
	"errors"
	"fmt"
)

// Generic
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
	ErrInternalServer = errors.New("internal server error")
)

// Dispatch / queue taxonomy. Structural errors are terminal for a message:
// the consumer logs and acknowledges, because a malformed payload cannot
// become valid by retrying. Everything else is transient and is left
// uncommitted so the broker redelivers.
var (
	ErrStructural       = errors.New("structural validation failed")
	ErrUnknownEventType = errors.New("unknown event type")
)

// Structural wraps ErrStructural with detail so consumers can classify
// with errors.Is while keeping the cause in the log line.
func Structural(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructural, fmt.Sprintf(format, args...))
}

func IsStructural(err error) bool {
	return errors.Is(err, ErrStructural) || errors.Is(err, ErrUnknownEventType)
}
