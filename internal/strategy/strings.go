package strategy

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Uppercase maps a string to upper case.
func Uppercase(_ context.Context, item string) (string, error) {
	return strings.ToUpper(item), nil
}

// Lowercase maps a string to lower case.
func Lowercase(_ context.Context, item string) (string, error) {
	return strings.ToLower(item), nil
}

// TrimSpace removes leading and trailing white space.
func TrimSpace(_ context.Context, item string) (string, error) {
	return strings.TrimSpace(item), nil
}

// Title maps a string to title case using language-neutral rules.
func Title(_ context.Context, item string) (string, error) {
	// a Caser keeps state and is not safe to share between goroutines
	return cases.Title(language.Und).String(item), nil
}

// Fold applies Unicode case folding, for case-insensitive keys.
func Fold(_ context.Context, item string) (string, error) {
	return cases.Fold().String(item), nil
}

// NormalizeNFC rewrites a string in Unicode normalization form C.
func NormalizeNFC(_ context.Context, item string) (string, error) {
	return norm.NFC.String(item), nil
}

// MinLength rejects strings shorter than n runes.
func MinLength(n int) Validator[string] {
	return func(item string) error {
		if l := utf8.RuneCountInString(item); l < n {
			return fmt.Errorf("%w: length %d is below minimum %d", ErrValidation, l, n)
		}
		return nil
	}
}

// MaxLength rejects strings longer than n runes.
func MaxLength(n int) Validator[string] {
	return func(item string) error {
		if l := utf8.RuneCountInString(item); l > n {
			return fmt.Errorf("%w: length %d exceeds maximum %d", ErrValidation, l, n)
		}
		return nil
	}
}

// NotEmpty rejects empty strings.
func NotEmpty() Validator[string] {
	return func(item string) error {
		if item == "" {
			return fmt.Errorf("%w: empty item", ErrValidation)
		}
		return nil
	}
}

// Matches rejects strings that do not match re.
func Matches(re *regexp.Regexp) Validator[string] {
	return func(item string) error {
		if !re.MatchString(item) {
			return fmt.Errorf("%w: does not match %s", ErrValidation, re)
		}
		return nil
	}
}
