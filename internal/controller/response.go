package controller

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/project/librarydesk/internal/entity"
	"github.com/project/librarydesk/internal/log"
	"go.opentelemetry.io/otel/trace"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New()
)

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decode reads a JSON body into dst rejecting unknown fields, then
// checks the validate tags of dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return entity.Invalidf("malformed request body: %v", err)
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return &requestError{fields: fieldErrs}
		}
		return entity.Invalid(err)
	}
	return nil
}

// requestError carries validator failures so they can be reported per field.
type requestError struct {
	fields validator.ValidationErrors
}

func (e *requestError) Error() string {
	return e.fields.Error()
}

func (e *requestError) Unwrap() error {
	return entity.ErrValidation
}

func (e *requestError) details() []FieldError {
	details := make([]FieldError, 0, len(e.fields))
	for _, fe := range e.fields {
		details = append(details, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return details
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return "is invalid"
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, entity.Invalidf("id must be a positive integer, got %q", raw)
	}
	return id, nil
}

func (i *implementation) respond(w http.ResponseWriter, r *http.Request, status int, body any, err error) {
	if err != nil {
		i.writeError(w, r, err)
		return
	}
	writeJSON(w, status, body)
}

// rejectRequest answers a request that failed decoding or parameter checks.
func (i *implementation) rejectRequest(w http.ResponseWriter, r *http.Request, action log.Action, err error) {
	span := trace.SpanFromContext(r.Context())
	log.ErrorRecord(i.logger, err, "Got invalid request", span.SpanContext().TraceID().String(), action, r.URL.Path)
	i.writeError(w, r, err)
}
