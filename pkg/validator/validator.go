package validator

import (
	"regexp"
	"strings"
	"unicode"

	playground "github.com/go-playground/validator/v10"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// Register добавляет собственные теги в движок валидации gin.
func Register(v *playground.Validate) error {
	return v.RegisterValidation("phone", func(fl playground.FieldLevel) bool {
		return ValidatePhone(fl.Field().String())
	})
}

func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(CleanPhone(phone))
}

// CleanPhone оставляет в номере только цифры и ведущий плюс.
func CleanPhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '+' {
			return r
		}
		return -1
	}, strings.TrimSpace(phone))
}

func FormatName(name string) string {
	parts := strings.Fields(name)
	for i, part := range parts {
		subparts := strings.Split(part, "-")
		for j, subpart := range subparts {
			if subpart == "" {
				continue
			}
			runes := []rune(strings.ToLower(subpart))
			runes[0] = unicode.ToUpper(runes[0])
			subparts[j] = string(runes)
		}
		parts[i] = strings.Join(subparts, "-")
	}

	return strings.Join(parts, " ")
}

func SanitizeString(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '<' || r == '>' || r == '`' {
			return -1
		}
		return r
	}, s))
}

// FieldErrors переводит ошибки валидатора в карту "поле -> причина".
func FieldErrors(errs playground.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fieldName(fe)] = describe(fe)
	}
	return fields
}

func fieldName(fe playground.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if ns == "" {
		ns = fe.Field()
	}
	return toSnake(ns)
}

func describe(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "email":
		return "некорректный email"
	case "phone":
		return "некорректный номер телефона"
	case "min", "gte":
		return "значение меньше допустимого: " + fe.Param()
	case "max", "lte":
		return "значение больше допустимого: " + fe.Param()
	case "oneof":
		return "допустимые значения: " + fe.Param()
	default:
		return "некорректное значение"
	}
}

func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '.' && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
