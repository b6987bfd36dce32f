package core

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	// custom validation tags
	notBlankTag    = "notblank"
	dotComEmailTag = "dotcom_email"
	pwdPolicyTag   = "pwdpolicy"

	dotComEmailRegex = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.com$`)
	pwdMinLen        = 8

	// texts for custom tags and for default tags whose stock message reads poorly in a form
	customTexts = map[Locale]map[string]string{
		LocaleEN: {
			"required":     "This field is required",
			"oneof":        "Invalid choice",
			notBlankTag:    "This field cannot be blank",
			dotComEmailTag: "Enter an email with a .com domain",
			pwdPolicyTag:   "Password must be at least 8 characters long and contain an uppercase letter, a lowercase letter and a digit",
		},
		LocaleUK: {
			"required":     "Це поле обов'язкове",
			"oneof":        "Недопустиме значення",
			notBlankTag:    "Це поле не може бути порожнім",
			dotComEmailTag: "Введіть email з доменом .com",
			pwdPolicyTag:   "Пароль має містити щонайменше 8 символів, велику літеру, малу літеру та цифру",
		},
	}
)

// InitValidators registers the custom validations and their en/uk translations.
func InitValidators(validate *validator.Validate, uni *ut.UniversalTranslator) error {
	enTrans := Translator(uni, LocaleEN)
	if err := en_translations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return errors.Wrap(err, "registering default translations")
	}

	// Use form field names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(dotComEmailTag, dotComEmailValidation)
	_ = validate.RegisterValidation(pwdPolicyTag, passwordPolicyValidation)

	for _, l := range Locales {
		trans := Translator(uni, l)
		for tag, text := range customTexts[l] {
			RegisterCustomTranslation(validate, trans, tag, text, true)
		}
	}
	return nil
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// dotComEmailValidation accepts local@domain.com style addresses only.
func dotComEmailValidation(fl validator.FieldLevel) bool {
	return ValidDotComEmail(fl.Field().String())
}

// passwordPolicyValidation applies the password policy:
// - minLen: 8
// - at least 1 uppercase, 1 lowercase and 1 digit
func passwordPolicyValidation(fl validator.FieldLevel) bool {
	return ValidPassword(fl.Field().String())
}

func ValidDotComEmail(email string) bool {
	return dotComEmailRegex.MatchString(email)
}

func ValidPassword(pwd string) bool {
	if len([]rune(pwd)) < pwdMinLen {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, char := range pwd {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
