package controller

import (
	"errors"
	"net/http"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/project/librarydesk/internal/entity"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrReferential):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrConflict), errors.Is(err, entity.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (i *implementation) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	span := trace.SpanFromContext(r.Context())
	span.RecordError(err)

	if status == http.StatusInternalServerError {
		if i.logger != nil {
			i.logger.Error("Request failed",
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
		writeJSON(w, status, ErrorResponse{Message: http.StatusText(status)})
		return
	}

	writeJSON(w, status, ErrorResponse{Message: err.Error(), Details: errorDetails(err)})
}

func errorDetails(err error) any {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.details()
	}

	var refErr *entity.ReferentialError
	if errors.As(err, &refErr) {
		return []FieldError{{Field: refErr.Field, Message: refErr.Reason}}
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		details := make([]FieldError, 0, len(fieldErrs))
		for _, field := range sortedFields(fieldErrs) {
			details = append(details, FieldError{Field: field, Message: fieldErrs[field].Error()})
		}
		return details
	}
	return nil
}

func sortedFields(errs validation.Errors) []string {
	fields := lo.Keys(errs)
	slices.Sort(fields)
	return fields
}
