package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/hostel-reservation/internal/utils"
)

// RequestValidator plugs go-playground/validator into echo's Validator hook.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator returns a validator with the date rules used by the
// API registered: "stay_date" (YYYY-MM-DD) and "after_date=Field" (strictly
// later than the named sibling date).
func NewRequestValidator() *RequestValidator {
	v := validator.New()
	_ = v.RegisterValidation("stay_date", stayDate)
	_ = v.RegisterValidation("after_date", afterDate)
	return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}

var stayDate validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := utils.ParseDate(s)
	return err == nil
}

var afterDate validator.Func = func(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	d, err := utils.ParseDate(s)
	if err != nil {
		return false
	}
	other, ok := fl.Parent().FieldByName(fl.Param()).Interface().(string)
	if !ok {
		return false
	}
	o, err := utils.ParseDate(other)
	if err != nil {
		// The sibling reports its own error.
		return true
	}
	return d.After(o)
}

// validationMessage turns validator errors into a short client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "stay_date":
			msgs = append(msgs, field+" must be a date formatted YYYY-MM-DD")
		case "after_date":
			msgs = append(msgs, fmt.Sprintf("%s must be after %s", field, strings.ToLower(fe.Param())))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
