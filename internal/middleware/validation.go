package middleware

import (
	"encoding/json"
	"net/http"

	"crm-graphql/internal/validation"
)

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validation.Struct(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	for _, fe := range validation.FieldErrors(err) {
		errors = append(errors, ValidationError{
			Field:   fe.Field,
			Message: fe.Message,
		})
	}

	return errors
}
