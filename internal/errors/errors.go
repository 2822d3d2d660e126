// Package errors defines the domain error taxonomy shared across services.
package errors

// DomainError is a stable, machine-readable error value. Services compare
// against the exported singletons with errors.Is.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}
