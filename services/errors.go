package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorKind classifies service failures for the HTTP layer
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindPersistence
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPersistence:
		return "persistence"
	case KindUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// ServiceError is the error type returned by every service operation
type ServiceError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ValidationError reports a missing or malformed input field
func ValidationError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Code: code, Message: message}
}

// NotFoundError reports a referenced record that does not exist
func NotFoundError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Code: code, Message: message}
}

// ConflictError reports a duplicate unique key or a state that forbids the operation
func ConflictError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Code: code, Message: message}
}

// PersistenceError wraps a failure of the underlying store
func PersistenceError(message string, err error) *ServiceError {
	return &ServiceError{Kind: KindPersistence, Code: "DATABASE_ERROR", Message: message, Err: err}
}

// UnavailableError reports an optional backend that is not configured
func UnavailableError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindUnavailable, Code: code, Message: message}
}

// IsKind reports whether err is a ServiceError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Kind == kind
}

// FromDB translates a database error into a ServiceError. ServiceErrors pass
// through untouched so transactional closures can return either.
func FromDB(err error, message string) error {
	if err == nil {
		return nil
	}

	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &ServiceError{Kind: KindNotFound, Code: "NOT_FOUND", Message: message, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ServiceError{Kind: KindConflict, Code: "DUPLICATE_KEY", Message: message, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return &ServiceError{Kind: KindConflict, Code: "DUPLICATE_KEY", Message: message, Err: err}
		case pgErr.Code == "23503":
			return &ServiceError{Kind: KindValidation, Code: "INVALID_REFERENCE", Message: message, Err: err}
		case strings.HasPrefix(pgErr.Code, "08"):
			return &ServiceError{Kind: KindPersistence, Code: "DATABASE_UNAVAILABLE", Message: message, Err: err}
		}
	}

	return PersistenceError(message, err)
}
