package core

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/uk"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Locale is a UI language code. Only the codes listed in Locales are valid.
type Locale string

const (
	LocaleUK Locale = "uk"
	LocaleEN Locale = "en"
)

var Locales = []Locale{LocaleUK, LocaleEN}

// ParseLocale returns the matching Locale, or LocaleUK for anything outside the allow-list.
func ParseLocale(code string) Locale {
	switch l := Locale(code); l {
	case LocaleUK, LocaleEN:
		return l
	default:
		return LocaleUK
	}
}

// message keys shared by the services and the views
const (
	MsgInvalidCredentials = "invalid_credentials"
	MsgEmailExists        = "email_exists"
	MsgInvalidDateTime    = "invalid_datetime"
	MsgInvalidDate        = "invalid_date"
	MsgMissingFile        = "missing_file"
)

var messages = map[Locale]map[string]string{
	LocaleEN: {
		MsgInvalidCredentials: "Invalid credentials",
		MsgEmailExists:        "A user with this email already exists",
		MsgInvalidDateTime:    "Enter the date and time as YYYY-MM-DDTHH:MM",
		MsgInvalidDate:        "Enter the date as YYYY-MM-DD",
		MsgMissingFile:        "Choose a file to upload",
	},
	LocaleUK: {
		MsgInvalidCredentials: "Невірні дані",
		MsgEmailExists:        "Користувач з таким email вже існує",
		MsgInvalidDateTime:    "Введіть дату й час у форматі РРРР-ММ-ДДTГГ:ХХ",
		MsgInvalidDate:        "Введіть дату у форматі РРРР-ММ-ДД",
		MsgMissingFile:        "Оберіть файл для завантаження",
	},
}

// NewTranslator returns a universal translator holding one translator per Locale,
// preloaded with the application messages.
func NewTranslator() (*ut.UniversalTranslator, error) {
	_en := en.New()
	uni := ut.New(_en, _en, uk.New())
	for _, l := range Locales {
		trans, ok := uni.GetTranslator(string(l))
		if !ok {
			return nil, errors.Errorf("no translator for locale %q", l)
		}
		for key, text := range messages[l] {
			if err := trans.Add(key, text, false); err != nil {
				return nil, errors.Wrapf(err, "adding %s message %q", l, key)
			}
		}
	}
	return uni, nil
}

// Translator returns the translator of l, falling back to the default one.
func Translator(uni *ut.UniversalTranslator, l Locale) ut.Translator {
	trans, _ := uni.GetTranslator(string(l))
	return trans
}

// Translate returns the text registered for key, or key itself when unknown.
func Translate(trans ut.Translator, key string) string {
	s, err := trans.T(key)
	if err != nil {
		return key
	}
	return s
}

// ErrorMessages turns a validation error into translated, user-facing messages.
// The second return value is false when err is not a validation error.
func ErrorMessages(err error, trans ut.Translator) ([]string, bool) {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		msgs := make([]string, 0, len(origErr))
		for _, fe := range origErr {
			msgs = append(msgs, fe.Translate(trans))
		}
		return msgs, true
	case *ValidationError:
		msgs := make([]string, 0, len(origErr.Fields)+1)
		if origErr.Err != nil {
			msgs = append(msgs, Translate(trans, origErr.Err.Error()))
		}
		for _, fe := range origErr.Fields {
			msgs = append(msgs, Translate(trans, fe.Error))
		}
		return msgs, true
	default:
		return nil, false
	}
}
