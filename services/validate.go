package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/vnkhanh/e-course-backend/apierr"
)

// The input types below are validated through their binding tags with gin's
// validator engine, both when controllers bind a request and when a service is
// called directly. Registration has to happen before the engine caches any of them.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidations(v)
	}
}

// RegisterValidations adds the custom tags and cross-field rules the input types rely
// on and reports fields by their json names.
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterStructValidation(questionOptions, QuestionInput{})
	v.RegisterStructValidation(registerContact, RegisterInput{})
}

func questionOptions(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuestionInput)
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return
		}
	}
	sl.ReportError(q.CorrectAnswer, "correct_answer", "CorrectAnswer", "oneof_options", "")
}

func registerContact(sl validator.StructLevel) {
	in := sl.Current().Interface().(RegisterInput)
	if in.Email == nil && in.Phone == nil {
		sl.ReportError(in.Email, "email", "Email", "email_or_phone", "")
	}
}

func validate(obj interface{}) error {
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return ValidationError(err)
	}
	return nil
}

// ValidationError turns a validator failure into an invalid_input error naming the
// first offending field. Anything else becomes a generic invalid_input.
func ValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apierr.New(apierr.KindInvalidInput, "invalid request body", err)
	}
	fe := verrs[0]
	return apierr.New(apierr.KindInvalidInput, fieldMessage(fe), err)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " is not a valid email address"
	case "http_url":
		return field + " must be an http(s) url"
	case "len":
		return fmt.Sprintf("%s must have exactly %s items", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof_options":
		return field + " must be one of the options"
	case "email_or_phone":
		return "email or phone is required"
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}
