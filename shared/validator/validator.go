package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError describes a single invalid field of a request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator validates request payloads against their struct tags and
// translates violations into per-field error messages.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New creates a Validator with English translations registered.
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report field names from the json tag instead of the Go identifier.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}

	return &Validator{
		validate: validate,
		trans:    trans,
	}
}

// ValidateStruct validates the given struct and returns one FieldError per
// violated constraint. A nil return means the payload is valid.
func (v *Validator) ValidateStruct(s any) []FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	fieldErrs := make([]FieldError, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fieldErrs = append(fieldErrs, FieldError{
			Field:   fieldErr.Field(),
			Message: fieldErr.Translate(v.trans),
		})
	}

	return fieldErrs
}
