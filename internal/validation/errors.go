package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// BodyField keys failures that concern the request body as a whole.
const BodyField = "body"

// Fields converts a bind or validation error into one message per
// offending field, keyed by the field's JSON name.
func Fields(err error) map[string]string {
	out := map[string]string{}

	var validationErrs validatorv10.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &validationErrs):
		for _, fe := range validationErrs {
			out[fieldPath(fe)] = message(fe)
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = BodyField
		}
		out[field] = "Not a valid " + typeName(typeErr.Type) + "."
	case errors.As(err, &syntaxErr):
		out[BodyField] = "Invalid JSON."
	case errors.Is(err, io.EOF):
		out[BodyField] = "Request body is required."
	default:
		out[BodyField] = err.Error()
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace so nested
// and indexed fields read as product_ids[1].
func fieldPath(fe validatorv10.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Missing data for required field."
	case "email":
		return "Not a valid email address."
	case "datetime":
		return "Not a valid date. Use YYYY-MM-DD."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Shorter than minimum length %s.", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Longer than maximum length %s bytes.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Longer than maximum length %s.", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	}
	return "Invalid value."
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return "value"
}
