package dto

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/form"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/org-admin/pkg/util/errorutil"
)

var (
	// Decoder maps url.Values onto structs using `form` tags.
	Decoder = form.NewDecoder()

	// Validate checks `validate` tags and reports fields by their form name.
	Validate = validator.New(validator.WithRequiredStructEnabled())
)

func init() {
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// UseForm decodes the urlencoded request body into v.
func UseForm[T any](c *fiber.Ctx, v T) (T, error) {
	values := url.Values{}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	if err := Decoder.Decode(v, values); err != nil {
		return v, apperrors.NewValidationError("Malformed form submission", nil)
	}
	return v, nil
}

// UseQuery decodes the query string into v.
func UseQuery[T any](c *fiber.Ctx, v T) (T, error) {
	values := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	if err := Decoder.Decode(v, values); err != nil {
		return v, apperrors.NewValidationError("Malformed query string", nil)
	}
	return v, nil
}

// check validates v. The message names the first missing required field,
// or the first failure when nothing required is missing; requiredMessage,
// when set, replaces the message for missing fields. Every failing field is
// listed under the "fields" detail.
func check(v any, requiredMessage string) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInternalError(err)
	}

	fields := make(map[string]string, len(verrs))
	var first, firstRequired validator.FieldError
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = messageFor(fe)
		}
		if first == nil {
			first = fe
		}
		if firstRequired == nil && fe.Tag() == "required" {
			firstRequired = fe
		}
	}

	message := messageFor(first)
	if firstRequired != nil {
		message = messageFor(firstRequired)
		if requiredMessage != "" {
			message = requiredMessage
		}
	}
	return apperrors.NewValidationError(message, map[string]any{"fields": fields})
}

func messageFor(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must be a number", label)
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", label)
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// humanize turns a form name such as "jobTitle" into "Job title".
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
