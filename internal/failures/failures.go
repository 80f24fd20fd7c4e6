package failures

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindForbidden            Kind = "FORBIDDEN"
	KindDuplicateEmail       Kind = "DUPLICATE_EMAIL"
	KindDuplicateApplication Kind = "DUPLICATE_APPLICATION"
	KindJobNotOpen           Kind = "JOB_NOT_OPEN"
	KindAlreadyFinalized     Kind = "ALREADY_FINALIZED"
	KindAlreadyPlaced        Kind = "ALREADY_PLACED"
	KindInvalidTransition    Kind = "INVALID_TRANSITION"
	KindNotFound             Kind = "NOT_FOUND"
	KindNotApproved          Kind = "NOT_APPROVED"
	KindInvalidCredentials   Kind = "INVALID_CREDENTIALS"
	KindValidation           Kind = "VALIDATION_ERROR"
	KindRateLimited          Kind = "RATE_LIMITED"
	KindInternal             Kind = "INTERNAL"
)

// Sentinels for errors.Is. Matching is done by kind only.
var (
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrDuplicateEmail       = &Error{Kind: KindDuplicateEmail}
	ErrDuplicateApplication = &Error{Kind: KindDuplicateApplication}
	ErrJobNotOpen           = &Error{Kind: KindJobNotOpen}
	ErrAlreadyFinalized     = &Error{Kind: KindAlreadyFinalized}
	ErrAlreadyPlaced        = &Error{Kind: KindAlreadyPlaced}
	ErrInvalidTransition    = &Error{Kind: KindInvalidTransition}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrNotApproved          = &Error{Kind: KindNotApproved}
	ErrInvalidCredentials   = &Error{Kind: KindInvalidCredentials}
	ErrValidation           = &Error{Kind: KindValidation}
	ErrRateLimited          = &Error{Kind: KindRateLimited}
	ErrInternal             = &Error{Kind: KindInternal}
)

type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
		}
		b.WriteString(" (" + strings.Join(parts, "; ") + ")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: errors.WithStack(err)}
}

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(entity string) *Error {
	return New(KindNotFound, entity+" not found")
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal
// for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
