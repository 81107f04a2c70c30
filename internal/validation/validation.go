// Package validation holds the field rules shared by the mutation services
// and the HTTP request decoder.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// User-facing messages reported in mutation results.
const (
	MsgEmailExists      = "Email already exists"
	MsgInvalidPhone     = "Invalid phone format"
	MsgNameRequired     = "Name is required"
	MsgPriceNotPositive = "Price must be positive"
	MsgNegativeStock    = "Stock cannot be negative"
	MsgInvalidCustomer  = "Invalid customer ID"
	MsgNoProducts       = "At least one product must be selected"
	MsgInvalidProducts  = "Some product IDs are invalid"

	// MsgMissingEntry takes the 1-based position of a null bulk entry.
	MsgMissingEntry = "Entry %d: input is required"
)

// Accepts 10-15 digits with an optional leading '+', or NNN-NNN-NNNN.
var phonePattern = regexp.MustCompile(`^(\+?\d{10,15}|\d{3}-\d{3}-\d{4})$`)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages read "email: ..." instead of "Email: ...".
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidPhone reports whether phone matches the accepted phone formats
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// PricePositive reports whether price is strictly greater than zero
func PricePositive(price decimal.Decimal) bool {
	return price.IsPositive()
}

// StockNonNegative reports whether stock is absent or at least zero
func StockNonNegative(stock *int) bool {
	return stock == nil || *stock >= 0
}

// Struct runs the validate tags declared on v
func Struct(v interface{}) error {
	return validate.Struct(v)
}

// FieldError is a single failed rule on a named field
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors flattens a validator error into field/message pairs.
// Errors that did not come from the validator yield nil.
func FieldErrors(err error) []FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   e.Field(),
			Message: Message(e),
		})
	}
	return fieldErrors
}

// Detail renders err as "field: message; field: message"
func Detail(err error) string {
	fieldErrors := FieldErrors(err)
	if len(fieldErrors) == 0 {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Message maps a failed validator tag to readable text
func Message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	default:
		return "Invalid value"
	}
}
