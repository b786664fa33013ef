package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

// Validator checks form input structs against their `validate` tags.
type Validator interface {
	Validate(obj interface{}) error
	// FieldErrors turns a validation error into field-keyed messages. Other
	// errors yield nil.
	FieldErrors(err error) map[string][]string
}

type validator struct {
	v *playground.Validate
}

func New() Validator {
	v := playground.New()

	// report fields by their form name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("role", func(fl playground.FieldLevel) bool {
		_, err := model.ParseRole(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("orderstatus", func(fl playground.FieldLevel) bool {
		return model.OrderStatus(fl.Field().String()).Valid()
	})

	return &validator{v: v}
}

func (v *validator) Validate(obj interface{}) error {
	return v.v.Struct(obj)
}

func (v *validator) FieldErrors(err error) map[string][]string {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		out[name] = append(out[name], message(fe))
	}
	return out
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("Must be %s %s", map[string]string{"gt": "greater than", "gte": "at least"}[fe.Tag()], fe.Param())
	case "role":
		return "Invalid enum value. Expected 'doctor' | 'pharmacist' | 'patient'"
	case "orderstatus":
		return "Invalid enum value. Expected 'pending' | 'accepted' | 'ready' | 'completed'"
	case "uuid", "uuid4":
		return "Invalid uuid"
	default:
		return fmt.Sprintf("Failed on %s", fe.Tag())
	}
}
