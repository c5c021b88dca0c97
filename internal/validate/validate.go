// Package validate wraps go-playground/validator with the tags and error
// messages shootcal uses. Every failure becomes a 422 AppError naming the
// first offending field by its JSON name.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/keyxmakerx/shootcal/internal/apperror"
)

// versionNumberRe matches dot-separated integers such as "1", "1.2", "2.0.1".
var versionNumberRe = regexp.MustCompile(`^\d+(\.\d+)*$`)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = val.RegisterValidation("versionnum", func(fl validator.FieldLevel) bool {
		return versionNumberRe.MatchString(fl.Field().String())
	})

	return val
}

// Struct validates s and returns a validation AppError describing the first
// failure, or nil.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.NewInternal(fmt.Errorf("validating %T: %w", s, err))
	}
	return apperror.NewValidation(message(verrs[0]))
}

// Date checks that s is a YYYY-MM-DD date. It is meant for path and query
// values, so a failure is a 400 naming the parameter.
func Date(name, s string) error {
	if err := v.Var(s, "required,datetime=2006-01-02"); err != nil {
		return apperror.NewBadRequest(name + " must be a date in YYYY-MM-DD format")
	}
	return nil
}

// VersionNumber reports whether s is a dot-separated version number.
func VersionNumber(s string) bool {
	return versionNumberRe.MatchString(s)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "versionnum":
		return field + " must look like 1.0 or 2.1.3"
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, fe.Param())
	}
	return field + " is invalid"
}
