package models

// ErrorCode is a stable, machine-readable code for domain failures.
// Codes are part of the API contract; renderers map them to user-facing
// messages, the core never formats user text.
type ErrorCode string

const (
	CodeSamplingExhausted ErrorCode = "sampling_exhausted"
	CodeAssetUnavailable  ErrorCode = "asset_unavailable"
	CodeSessionNotFound   ErrorCode = "session_not_found"
	CodeSessionComplete   ErrorCode = "session_complete"
	CodeAttemptsExhausted ErrorCode = "attempts_exhausted"
	CodeInvalidGuess      ErrorCode = "invalid_guess"
)

// DomainError is a typed game/sampling failure scoped to a single request.
// Nothing in the core is fatal to the process.
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return string(e.Code) + ": " + e.Message
}

var (
	ErrSamplingExhausted = &DomainError{CodeSamplingExhausted, "no playable candidate found, try again"}
	ErrSessionNotFound   = &DomainError{CodeSessionNotFound, "game not found"}
	ErrSessionComplete   = &DomainError{CodeSessionComplete, "game is already complete"}
	ErrAttemptsExhausted = &DomainError{CodeAttemptsExhausted, "no attempts remaining"}
	ErrInvalidGuess      = &DomainError{CodeInvalidGuess, "could not resolve the guessed name"}
)
