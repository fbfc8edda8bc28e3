package animals

import "errors"

// Errores del registro. Los handlers y el servicio deciden por tipo:
// validación nunca se reintenta, ErrConflict sí (acotado).
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrAnimalNotFound    = errors.New("animal not found")
	ErrPenNotFound       = errors.New("pen not found")
	ErrSpeciesMismatch   = errors.New("species mismatch")
	ErrCapacityExceeded  = errors.New("pen capacity exceeded")
	ErrAlreadyDeceased   = errors.New("animal already deceased")
	ErrAnimalNotActive   = errors.New("animal not active")
	ErrDuplicateTag      = errors.New("tag already in use")

	// ErrConflict lo devuelven los adapters cuando el store aborta por
	// contención (serialization failure, deadlock, unique violation
	// transitoria). El servicio lo reintenta con backoff acotado.
	ErrConflict = errors.New("transient storage conflict")

	// ErrConflictExhausted se devuelve cuando se agotan los reintentos.
	ErrConflictExhausted = errors.New("concurrent conflict: retries exhausted")
)
