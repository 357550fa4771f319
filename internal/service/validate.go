package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ErrValidation wraps every input validation failure.
var ErrValidation = errors.New("validation failed")

var (
	validate   *validator.Validate
	translator ut.Translator
)

const notBlankTag = "notblank"

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	var found bool
	if translator, found = uni.GetTranslator("en"); !found {
		panic("validator: english translator not registered")
	}
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(fmt.Sprintf("validator: registering translations: %v", err))
	}
	if err := validate.RegisterValidation(notBlankTag, notBlankValidation); err != nil {
		panic(fmt.Sprintf("validator: registering %s: %v", notBlankTag, err))
	}
	err := validate.RegisterTranslation(notBlankTag, translator,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " cannot be blank"
		})
	if err != nil {
		panic(fmt.Sprintf("validator: registering %s translation: %v", notBlankTag, err))
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return false
}

// validateStruct runs struct tags on v and reports all field failures in
// one ErrValidation, sorted by field name.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(translator))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

// validateVar checks a single value against tag.
func validateVar(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return fmt.Errorf("%w: %s is invalid (%s)", ErrValidation, field, tag)
	}
	return nil
}
