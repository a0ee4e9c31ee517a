package market

import (
	"net/mail"
	"strings"
	"unicode"

	"marketplace/internal/errs"
)

const (
	MinNameLen     = 2
	MaxNameLen     = 64
	MinPasswordLen = 8
)

// ValidateRegister проверяет данные регистрации до запроса к серверу.
func ValidateRegister(req RegisterRequest) error {
	if err := ValidateName(req.Name); err != nil {
		return err
	}
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}
	if req.Phone != "" {
		if err := ValidatePhone(req.Phone); err != nil {
			return err
		}
	}
	return ValidatePassword(req.Password)
}

func ValidateName(name string) error {
	n := len([]rune(strings.TrimSpace(name)))
	if n < MinNameLen {
		return errs.Validation("имя должно содержать минимум %d символа", MinNameLen)
	}
	if n > MaxNameLen {
		return errs.Validation("имя должно содержать не более %d символов", MaxNameLen)
	}
	return nil
}

func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errs.Validation("некорректный email")
	}
	return nil
}

// ValidatePhone допускает цифры, пробелы, дефисы, скобки и ведущий плюс.
func ValidatePhone(phone string) error {
	digits := 0
	for i, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return errs.Validation("некорректный номер телефона")
		}
	}
	if digits < 10 || digits > 15 {
		return errs.Validation("некорректный номер телефона")
	}
	return nil
}

// ValidatePassword требует минимальную длину, букву и цифру.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLen {
		return errs.Validation("пароль должен содержать минимум %d символов", MinPasswordLen)
	}

	hasLetter := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter {
		return errs.Validation("пароль должен содержать хотя бы одну букву")
	}
	if !hasDigit {
		return errs.Validation("пароль должен содержать хотя бы одну цифру")
	}
	return nil
}
