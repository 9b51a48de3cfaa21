package catalog

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidReview is matched by every review validation failure.
var ErrInvalidReview = errors.New("invalid review")

// ReviewInput is a review as submitted from a form or the API.
type ReviewInput struct {
	MovieID int64   `json:"movie_id" validate:"required,gt=0"`
	Author  string  `json:"author" validate:"required,max=100"`
	Content string  `json:"content" validate:"required,min=10"`
	Rating  float64 `json:"rating" validate:"required,min=0.5,max=10,halfstep"`
}

// ValidationError lists the fields that failed validation, keyed by their
// JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range []string{"movie_id", "author", "content", "rating"} {
		if msg, ok := e.Fields[name]; ok {
			parts = append(parts, msg)
		}
	}
	return "invalid review: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidReview }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("halfstep", func(fl validator.FieldLevel) bool {
		doubled := fl.Field().Float() * 2
		return doubled == math.Trunc(doubled)
	})
	return v
}

// normalize trims surrounding whitespace from the text fields.
func (in ReviewInput) normalize() ReviewInput {
	in.Author = strings.TrimSpace(in.Author)
	in.Content = strings.TrimSpace(in.Content)
	return in
}

// Validate checks the input and returns a *ValidationError describing every
// failing field.
func (in ReviewInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate review: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "gt":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if field == "rating" {
			return "rating must be at least " + fe.Param()
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if field == "rating" {
			return "rating must be at most " + fe.Param()
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "halfstep":
		return "rating must be a multiple of 0.5"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
