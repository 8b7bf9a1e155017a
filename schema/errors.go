package schema

import "errors"

// Error kinds from §7. Sentinel values so callers can errors.Is/errors.As
// instead of pattern-matching message text.
var (
	ErrConnect              = errors.New("connect failed")
	ErrAuthOrAlgorithm      = errors.New("authentication or algorithm negotiation failed")
	ErrTimeout              = errors.New("timed out waiting for prompt")
	ErrPromptNotFound       = errors.New("no recognizable prompt in output")
	ErrConfigMode           = errors.New("could not enter or exit config mode")
	ErrCommit               = errors.New("commit rejected")
	ErrCommand              = errors.New("command error reported by device")
	ErrConfirmationMismatch = errors.New("confirmation dialog did not match expected pattern")
	ErrCanceled             = errors.New("operation canceled")
	ErrUnsupportedDevice    = errors.New("unsupported device type")
	ErrNotConnected         = errors.New("session not connected")
	ErrBusy                 = errors.New("pool entry in use")
	ErrDuplicatePoolEntry   = errors.New("live pool entry already exists for key")
)
