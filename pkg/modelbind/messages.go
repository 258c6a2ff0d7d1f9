package modelbind

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/dmitrymomot/formbind/pkg/validator"
)

const (
	keyMissingBindRequiredValue = "binding.missing_required_value"
	keyAttemptedValueIsInvalid  = "binding.attempted_value_invalid"
	keyInvalidBody              = "binding.invalid_body"
	keyExpressionFailed         = "binding.expression_failed"
)

// translation is a catalog entry: the format string per language and the
// TranslationValues keys feeding its verbs, in order.
type translation struct {
	en, es string
	args   []string
}

var translations = map[string]translation{
	keyMissingBindRequiredValue: {
		en: "A value for the '%s' parameter or property was not provided.",
		es: "No se proporcionó un valor para el parámetro o la propiedad '%s'.",
	},
	keyAttemptedValueIsInvalid: {
		en: "The value '%s' is not valid for %s.",
		es: "El valor '%s' no es válido para %s.",
	},
	keyInvalidBody: {
		en: "The request body is invalid.",
		es: "El cuerpo de la solicitud no es válido.",
	},
	keyExpressionFailed: {
		en: "The value of '%s' is invalid.",
		es: "El valor de '%s' no es válido.",
	},
	"validation.required":       {en: "field is required", es: "el campo es obligatorio"},
	"validation.min_length":     {en: "must be at least %v characters long", es: "debe tener al menos %v caracteres", args: []string{"min"}},
	"validation.max_length":     {en: "must be at most %v characters long", es: "debe tener como máximo %v caracteres", args: []string{"max"}},
	"validation.exact_length":   {en: "must be exactly %v characters long", es: "debe tener exactamente %v caracteres", args: []string{"length"}},
	"validation.min_items":      {en: "must have at least %v items", es: "debe tener al menos %v elementos", args: []string{"min"}},
	"validation.max_items":      {en: "must have at most %v items", es: "debe tener como máximo %v elementos", args: []string{"max"}},
	"validation.exact_items":    {en: "must have exactly %v items", es: "debe tener exactamente %v elementos", args: []string{"length"}},
	"validation.min":            {en: "must be at least %v", es: "debe ser al menos %v", args: []string{"min"}},
	"validation.max":            {en: "must be at most %v", es: "debe ser como máximo %v", args: []string{"max"}},
	"validation.in_list":        {en: "must be one of: %v", es: "debe ser uno de: %v", args: []string{"allowed_values"}},
	"validation.email":          {en: "must be a valid email address", es: "debe ser un correo electrónico válido"},
	"validation.url":            {en: "must be a valid URL", es: "debe ser una URL válida"},
	"validation.url_scheme":     {en: "must be a valid URL with scheme: %v", es: "debe ser una URL válida con esquema: %v", args: []string{"schemes"}},
	"validation.uuid":           {en: "must be a valid UUID", es: "debe ser un UUID válido"},
	"validation.uuid_not_nil":   {en: "must not be a nil UUID", es: "no debe ser un UUID nulo"},
	"validation.ip":             {en: "must be a valid IP address", es: "debe ser una dirección IP válida"},
	"validation.phone":          {en: "must be a valid phone number in international format", es: "debe ser un número de teléfono válido en formato internacional"},
	"validation.alpha":          {en: "must contain only letters", es: "debe contener solo letras"},
	"validation.alphanumeric":   {en: "must contain only letters and numbers", es: "debe contener solo letras y números"},
	"validation.numeric_string": {en: "must contain only digits", es: "debe contener solo dígitos"},
}

// SupportedLanguages lists the languages messages are available in.
// The first one is the fallback.
var SupportedLanguages = []language.Tag{language.English, language.Spanish}

var (
	messageCatalog  = buildCatalog()
	languageMatcher = language.NewMatcher(SupportedLanguages)
	defaultMessages = NewMessages(language.English)
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, tr := range translations {
		if err := b.SetString(language.English, key, tr.en); err != nil {
			panic(fmt.Sprintf("modelbind: catalog entry %s: %v", key, err))
		}
		if err := b.SetString(language.Spanish, key, tr.es); err != nil {
			panic(fmt.Sprintf("modelbind: catalog entry %s: %v", key, err))
		}
	}
	return b
}

// Messages formats binding and validation messages in one language.
type Messages struct {
	tag     language.Tag
	printer *message.Printer
}

// NewMessages returns messages for the closest supported match of tag.
func NewMessages(tag language.Tag) *Messages {
	_, idx, _ := languageMatcher.Match(tag)
	matched := SupportedLanguages[idx]
	return &Messages{
		tag:     matched,
		printer: message.NewPrinter(matched, message.Catalog(messageCatalog)),
	}
}

// MessagesFor picks the language from an Accept-Language header value.
// Headers naming no supported language fall back to English.
func MessagesFor(acceptLanguage string) *Messages {
	if m, ok := matchMessages(acceptLanguage); ok {
		return m
	}
	return defaultMessages
}

// matchMessages reports false when acceptLanguage names no supported language.
func matchMessages(acceptLanguage string) (*Messages, bool) {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return nil, false
	}
	_, idx, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return nil, false
	}
	return NewMessages(SupportedLanguages[idx]), true
}

// Language returns the language messages are printed in.
func (m *Messages) Language() language.Tag {
	return m.tag
}

// MissingBindRequiredValue reports a required property without a submitted value.
func (m *Messages) MissingBindRequiredValue(name string) string {
	return m.printer.Sprintf(keyMissingBindRequiredValue, name)
}

// AttemptedValueIsInvalid reports a value that could not be converted.
func (m *Messages) AttemptedValueIsInvalid(value, name string) string {
	return m.printer.Sprintf(keyAttemptedValueIsInvalid, value, name)
}

// InvalidBody reports an undecodable request body.
func (m *Messages) InvalidBody() string {
	return m.printer.Sprintf(keyInvalidBody)
}

// ExpressionFailed reports a failed `vd` expression without its own message.
func (m *Messages) ExpressionFailed(name string) string {
	return m.printer.Sprintf(keyExpressionFailed, name)
}

// Validation translates a validator finding. Unknown keys keep the
// validator's English message.
func (m *Messages) Validation(e validator.ValidationError) string {
	tr, ok := translations[e.TranslationKey]
	if !ok {
		return e.Message
	}
	if m.tag == language.English {
		return e.Message
	}
	args := make([]any, 0, len(tr.args))
	for _, name := range tr.args {
		args = append(args, e.TranslationValues[name])
	}
	return m.printer.Sprintf(e.TranslationKey, args...)
}
