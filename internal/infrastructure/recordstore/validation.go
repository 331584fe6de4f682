// Package recordstore provides the BillStore implementations: a local store
// backed by sqlite and the receipts directory, and an HTTP client for a
// remote record store.
package recordstore

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/garyjia/billed/internal/domain/entity"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json field names in messages
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Numbers validate as float64 so min/max work; unset is absent and
	// unparsable text is NaN, which fails any bound.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		n, ok := field.Interface().(entity.Number)
		if !ok || !n.IsSet() {
			return nil
		}
		if !n.Valid() {
			return math.NaN()
		}
		return n.Float64()
	}, entity.Number{})

	// required would treat a set zero as missing; an unset Number reaches
	// validation as nil and fails here.
	_ = v.RegisterValidation("present", func(fl validator.FieldLevel) bool {
		return fl.Field().IsValid()
	})

	_ = v.RegisterValidation("expensetype", func(fl validator.FieldLevel) bool {
		return slices.Contains(entity.ExpenseTypes, fl.Field().String())
	})

	return v
}

// validateBill checks a complete bill and returns a user-facing message on failure
func validateBill(bill *entity.Bill) (string, bool) {
	err := validate.Struct(bill)
	if err == nil {
		return "", true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error(), false
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return strings.Join(msgs, "; "), false
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "present":
		return fmt.Sprintf("%s is required", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s must be a number within bounds (%s %s)", fe.Field(), fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "expensetype":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(entity.ExpenseTypes, ", "))
	case "email":
		return fmt.Sprintf("%s must be an email address", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
