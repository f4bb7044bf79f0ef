package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the tags phonekit request
// bodies use. Field names in errors come from the json tag.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator with the "dialcode" and "digits" tags
// registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("dialcode", func(fl validator.FieldLevel) bool {
		return isDigits(strings.TrimPrefix(fl.Field().String(), "+"))
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return isDigits(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates s against its validate tags.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// DecodeAndValidate decodes the JSON body into v and validates it. On
// failure it writes a 400 response naming the first offending field and
// returns false.
func (val *Validator) DecodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if !DecodeJSON(w, r, v) {
		return false
	}
	err := val.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		WriteFieldError(w, http.StatusBadRequest, "validation failed",
			fe.Field(), fe.Tag(), fieldMessage(fe))
		return false
	}
	WriteError(w, http.StatusBadRequest, err.Error())
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "dialcode":
		return fmt.Sprintf("%s must be a dialing code such as \"385\" or \"+1\"", fe.Field())
	case "digits":
		return fmt.Sprintf("%s must contain only digits", fe.Field())
	case "max":
		return fmt.Sprintf("%s must have at most %s entries", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
