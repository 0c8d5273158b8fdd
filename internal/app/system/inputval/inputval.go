// Package inputval validates form input structs using struct tags and
// turns validator errors into messages fit for showing above a form.
//
// Fields use `validate` tags for rules and an optional `label` tag for the
// human name used in messages:
//
//	type uploadInput struct {
//		URL string `validate:"omitempty,http_url" label:"URL"`
//	}
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
	})
	return v
}

// Result holds validation messages in field order.
type Result struct {
	Messages []string
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool {
	return len(r.Messages) > 0
}

// First returns the first message, or "".
func (r Result) First() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0]
}

// Validate checks s (a struct or pointer to struct).
func Validate(s any) Result {
	err := instance().Struct(s)
	if err == nil {
		return Result{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Result{Messages: []string{"Invalid input."}}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return Result{Messages: msgs}
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", name)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", name, fe.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid absolute URL (e.g., https://example.com).", name)
	default:
		return fmt.Sprintf("%s is invalid.", name)
	}
}
