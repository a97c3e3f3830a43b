// Package apierror implements the closed error taxonomy for the authority:
// every error it raises is one of a fixed set of Kinds, each mapped to
// exactly one HTTP status.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/moogar0880/problems"
	"go.mongodb.org/mongo-driver/mongo"
)

// Kind is the closed error taxonomy.
type Kind string

const (
	// BadFormatReceived is a malformed inbound payload or an unparseable enum.
	BadFormatReceived Kind = "bad_format_received"
	// BadFormatProduced is an internal failure to serialize a response.
	BadFormatProduced Kind = "bad_format_produced"
	// BadFormatUnknown is a wire value that parses to no known variant.
	BadFormatUnknown Kind = "bad_format_unknown"
	// Security is a token/ref mismatch, invalid signature, or failed DID possession check.
	Security Kind = "security"
	// Forbidden is a token/tx_code mismatch once the payload shape is valid.
	Forbidden Kind = "forbidden"
	// Unauthorized is a role not permitted to issue the requested vc_type.
	Unauthorized Kind = "unauthorized"
	// NotFound is a repository lookup miss.
	NotFound Kind = "not_found"
	// NotImplemented is an unsupported interact start method or VC model.
	NotImplemented Kind = "not_implemented"
	// Consumer is a failed outbound call to a minion.
	Consumer Kind = "consumer"
	// Module is a required optional module (wallet, dataspace_id) left unconfigured.
	Module Kind = "module"
)

// httpStatus is the one table mapping Kind to HTTP status.
var httpStatus = map[Kind]int{
	BadFormatReceived: http.StatusBadRequest,
	BadFormatProduced: http.StatusBadRequest,
	BadFormatUnknown:  http.StatusBadRequest,
	Security:          http.StatusUnauthorized,
	Forbidden:         http.StatusForbidden,
	Unauthorized:      http.StatusForbidden,
	NotFound:          http.StatusNotFound,
	NotImplemented:    http.StatusNotImplemented,
	Consumer:          http.StatusBadGateway,
	Module:            http.StatusInternalServerError,
}

// Err is the one error type the authority's internal packages return. It
// carries a Kind from the closed taxonomy plus an optional machine-readable
// Details payload.
type Err struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Err) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s (%+v)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// HTTPStatus returns the status code this Kind renders as.
func (e *Err) HTTPStatus() int {
	if s, ok := httpStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New creates an Err of the given Kind.
func New(kind Kind, message string) *Err {
	return &Err{Kind: kind, Message: message}
}

// Newf creates an Err of the given Kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Err {
	return &Err{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches a details payload and returns the same Err for chaining.
func (e *Err) WithDetails(details any) *Err {
	e.Details = details
	return e
}

// Sentinels reused across packages as wrap targets for errors.Is/errors.As.
var (
	ErrBadFormatReceived = New(BadFormatReceived, "bad_format_received")
	ErrSecurity          = New(Security, "security")
	ErrForbidden         = New(Forbidden, "forbidden")
	ErrUnauthorized      = New(Unauthorized, "unauthorized")
	ErrNotFound          = New(NotFound, "not_found")
	ErrNotImplemented    = New(NotImplemented, "not_implemented")
	ErrConsumer          = New(Consumer, "consumer")
	ErrModule            = New(Module, "module")
)

// As extracts an *Err from err, if present anywhere in its chain.
func As(err error) (*Err, bool) {
	var apiErr *Err
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the Kind of err if it is (or wraps) an *Err, else "".
func KindOf(err error) Kind {
	if apiErr, ok := As(err); ok {
		return apiErr.Kind
	}
	return ""
}

// Wrap classifies a third-party error into the closed taxonomy.
func Wrap(err error) *Err {
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*Err); ok {
		return apiErr
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		fields := make([]string, 0, len(valErrs))
		for _, e := range valErrs {
			fields = append(fields, e.Namespace()+" failed "+e.Tag())
		}
		return Newf(BadFormatReceived, "validation failed").WithDetails(fields)
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return New(NotFound, "not found")
	}

	if mongo.IsDuplicateKeyError(err) {
		return New(BadFormatReceived, "duplicate key")
	}

	return Newf(Module, "internal error: %s", err.Error())
}

// Problem renders err as an RFC7807 problem detail for the HTTP boundary,
// using the Kind's mapped status.
func Problem(err *Err) *problems.Problem {
	problem := problems.NewStatusProblem(err.HTTPStatus())
	problem.Title = string(err.Kind)
	problem.Detail = err.Message
	return problem
}
