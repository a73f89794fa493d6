package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"mailmaster_backend/internal/apperror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their json name so error keys match request bodies
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Struct runs the tag rules on s and converts any failures into the API's
// field -> messages shape. Returns nil when everything passes.
func Struct(s interface{}) *apperror.ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out := apperror.NewValidationError()
		out.Add("_", err.Error())
		return out
	}

	out := apperror.NewValidationError()
	for _, fe := range verrs {
		out.Add(fe.Field(), messageFor(fe))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
