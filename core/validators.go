package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var wordRegex = regexp.MustCompile(`^\w+$`)

// customTag is a validation tag with its english message.
// A nil fn only overrides the message of a built-in tag.
type customTag struct {
	tag  string
	text string
	fn   validator.Func
}

var customTags = []customTag{
	{tag: "alphanum_", text: "only alphanumeric characters and underscores are allowed", fn: isWord},
	{tag: "notblank", text: "this field cannot be blank", fn: isNotBlank},
	{tag: "required", text: "this field is required"},
	{tag: "required_with", text: "this field is required"},
}

// NewTranslator returns the english translator of validation messages.
func NewTranslator() ut.Translator {
	locale := en.New()
	translator, _ := ut.New(locale, locale).GetTranslator("en")
	return translator
}

// InitValidators registers the english messages, the JSON field names and the shared custom tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)
	validate.RegisterTagNameFunc(jsonFieldName)

	for _, ct := range customTags {
		if ct.fn != nil {
			_ = validate.RegisterValidation(ct.tag, ct.fn)
		}
		RegisterCustomTranslation(validate, translator, ct.tag, ct.text, ct.fn == nil)
	}
}

// RegisterCustomTranslation sets the message of `tag`. Pass override to replace a built-in message.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	replace := len(override) > 0 && override[0]
	register := func(t ut.Translator) error {
		return t.Add(tag, text, replace)
	}
	translate := func(t ut.Translator, fe validator.FieldError) string {
		msg, _ := t.T(tag, fe.Field())
		return msg
	}
	_ = validate.RegisterTranslation(tag, translator, register, translate)
}

// jsonFieldName reports fields by their JSON name, "" for `json:"-"`.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func isWord(fl validator.FieldLevel) bool {
	return wordRegex.MatchString(fl.Field().String())
}

func isNotBlank(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	return ok && strings.TrimSpace(str) != ""
}
