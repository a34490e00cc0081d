package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// StructValidator plugs validator/v10 into echo. Field names in errors are the json names.
type StructValidator struct {
	v *validator.Validate
}

func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &StructValidator{v: v}
}

func (sv *StructValidator) Validate(i interface{}) error {
	return sv.v.Struct(i)
}

// BindAndValidate binds the request, fills `default` tags left zero and validates.
// It returns nil when the request is acceptable.
func BindAndValidate(c echo.Context, req interface{}) []*AppError {
	if err := c.Bind(req); err != nil {
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg = fmt.Sprint(he.Message)
		}
		return []*AppError{NewAppError(CodeBadBody, "", msg, http.StatusBadRequest)}
	}
	if err := defaults.Set(req); err != nil {
		return []*AppError{InternalError("request defaults").WithError(err)}
	}
	if err := c.Validate(req); err != nil {
		return fieldErrors(err)
	}
	return nil
}

func fieldErrors(err error) []*AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*AppError{NewAppError(CodeBadBody, "", err.Error(), http.StatusBadRequest)}
	}
	out := make([]*AppError, 0, len(verrs))
	for _, fe := range verrs {
		ae := NewAppError("ERR_"+strings.ToUpper(fe.Tag()), fe.Field(), describe(fe), http.StatusBadRequest)
		if p := fe.Param(); p != "" {
			ae.WithParam(fe.Tag(), p)
		}
		out = append(out, ae)
	}
	return out
}

var tagMessages = map[string]string{
	"required": "%s is required",
	"url":      "%s must be a valid URL",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be at least %s",
	"lt":       "%s must be less than %s",
	"lte":      "%s must be at most %s",
	"oneof":    "%s must be one of: %s",
}

func describe(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be %s %s characters", field, bound, param)
		}
		return fmt.Sprintf("%s must be %s %s", field, bound, param)
	case "oneof":
		return fmt.Sprintf(tagMessages["oneof"], field, strings.ReplaceAll(param, " ", ", "))
	}
	if f, ok := tagMessages[fe.Tag()]; ok {
		if strings.Count(f, "%s") == 2 {
			return fmt.Sprintf(f, field, param)
		}
		return fmt.Sprintf(f, field)
	}
	return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
}
