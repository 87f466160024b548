package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxTypeExprLength bounds type expressions accepted from users.
const maxTypeExprLength = 256

// typeExprRegex matches the characters allowed in a type expression: Go
// identifiers, package qualifiers, brackets, pointers and array lengths.
var typeExprRegex = regexp.MustCompile(`^[A-Za-z0-9_.\[\]*{} ]+$`)

// ValidateTypeExpr validates a type expression supplied on the command line
// or over HTTP before it is parsed.
//
// The validation rules are intentionally conservative:
//   - No empty expressions
//   - No control characters
//   - Maximum length of 256 characters
//   - Balanced brackets
//   - Only identifier, qualifier, bracket and pointer characters
func ValidateTypeExpr(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return New(ErrCodeInvalidInput, "type expression cannot be empty")
	}

	if len(expr) > maxTypeExprLength {
		return New(ErrCodeInvalidInput, "type expression too long (max %d characters)", maxTypeExprLength)
	}

	for _, r := range expr {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "type expression contains invalid control characters")
		}
	}

	if !typeExprRegex.MatchString(expr) {
		return New(ErrCodeInvalidInput, "type expression contains invalid characters: %q", expr)
	}

	depth := 0
	for _, r := range expr {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return New(ErrCodeInvalidInput, "unbalanced brackets in %q", expr)
			}
		}
	}
	if depth != 0 {
		return New(ErrCodeInvalidInput, "unbalanced brackets in %q", expr)
	}

	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
