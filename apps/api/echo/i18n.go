package echoapi

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"

	"github.com/trezcool/shkola/core"
)

var labels = map[core.Locale]map[string]string{
	core.LocaleEN: {
		"app_title":      "School",
		"language":       "Language",
		"login":          "Log in",
		"logout":         "Log out",
		"register":       "Register",
		"no_account":     "No account yet?",
		"have_account":   "Already registered?",
		"first_name":     "First name",
		"last_name":      "Last name",
		"name":           "Name",
		"email":          "Email",
		"password":       "Password",
		"password_hint":  "Leave empty to keep the current password",
		"role":           "Role",
		"teacher":        "Teacher",
		"student":        "Student",
		"welcome":        "Welcome",
		"dashboard":      "Dashboard",
		"calendar":       "Calendar",
		"add_schedule":   "Schedule a lesson",
		"grades":         "Grades",
		"add_grade":      "Add grade",
		"homework":       "Homework",
		"add_homework":   "Assign homework",
		"settings":       "Settings",
		"save":           "Save",
		"subject":        "Subject",
		"datetime":       "Date and time",
		"student_email":  "Student email",
		"grade":          "Grade",
		"title":          "Title",
		"description":    "Description",
		"due_date":       "Due date",
		"submission":     "Submission",
		"not_submitted":  "Not submitted",
		"submit":         "Submit",
		"download":       "Download",
		"nothing":        "Nothing yet",
		"notifications":  "Notifications",
		"send":           "Send",
		"message":        "Message",
		"error":          "Error",
		"back":           "Back to dashboard",
		"lessons_none":   "No lessons scheduled",
		"teacher_name":   "Teacher",
		"student_name":   "Student",
		"view_calendar":  "View calendar",
		"view_grades":    "View grades",
		"view_homework":  "View homework",
		"edit_settings":  "Edit settings",
		"homework_files": "Submitted files",
	},
	core.LocaleUK: {
		"app_title":      "Школа",
		"language":       "Мова",
		"login":          "Увійти",
		"logout":         "Вийти",
		"register":       "Зареєструватися",
		"no_account":     "Ще немає облікового запису?",
		"have_account":   "Вже зареєстровані?",
		"first_name":     "Ім'я",
		"last_name":      "Прізвище",
		"name":           "Ім'я",
		"email":          "Email",
		"password":       "Пароль",
		"password_hint":  "Залиште порожнім, щоб зберегти поточний пароль",
		"role":           "Роль",
		"teacher":        "Вчитель",
		"student":        "Учень",
		"welcome":        "Вітаємо",
		"dashboard":      "Головна",
		"calendar":       "Розклад",
		"add_schedule":   "Запланувати урок",
		"grades":         "Оцінки",
		"add_grade":      "Додати оцінку",
		"homework":       "Домашні завдання",
		"add_homework":   "Задати домашнє завдання",
		"settings":       "Налаштування",
		"save":           "Зберегти",
		"subject":        "Предмет",
		"datetime":       "Дата і час",
		"student_email":  "Email учня",
		"grade":          "Оцінка",
		"title":          "Назва",
		"description":    "Опис",
		"due_date":       "Термін здачі",
		"submission":     "Відповідь",
		"not_submitted":  "Не здано",
		"submit":         "Надіслати",
		"download":       "Завантажити",
		"nothing":        "Поки що нічого",
		"notifications":  "Сповіщення",
		"send":           "Надіслати",
		"message":        "Повідомлення",
		"error":          "Помилка",
		"back":           "Повернутися на головну",
		"lessons_none":   "Уроків не заплановано",
		"teacher_name":   "Вчитель",
		"student_name":   "Учень",
		"view_calendar":  "Переглянути розклад",
		"view_grades":    "Переглянути оцінки",
		"view_homework":  "Переглянути домашні завдання",
		"edit_settings":  "Змінити налаштування",
		"homework_files": "Надіслані файли",
	},
}

// addLabels registers the view labels with the translator of each locale.
func addLabels(uni *ut.UniversalTranslator) error {
	for l, texts := range labels {
		trans := core.Translator(uni, l)
		for key, text := range texts {
			if err := trans.Add(key, text, true); err != nil {
				return errors.Wrapf(err, "adding %s label %q", l, key)
			}
		}
	}
	return nil
}
