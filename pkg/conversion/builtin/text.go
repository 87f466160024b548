package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/convgraph/pkg/conversion"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

func text() []conversion.Converter {
	return []conversion.Converter{
		conversion.TypedDuplex(
			func(v int64) (string, bool) { return strconv.FormatInt(v, 10), true },
			ParseInt,
			conversion.WithName("IntText"),
		),
		conversion.TypedDuplex(
			func(v uint64) (string, bool) { return strconv.FormatUint(v, 10), true },
			ParseUint,
			conversion.WithName("UintText"),
		),
		conversion.TypedDuplex(
			func(v float64) (string, bool) { return strconv.FormatFloat(v, 'g', -1, 64), true },
			ParseFloat,
			conversion.WithName("FloatText"),
		),
		conversion.TypedDuplex(
			func(v bool) (string, bool) { return strconv.FormatBool(v), true },
			ParseBool,
			conversion.WithName("BoolText"),
		),
		conversion.TypedDuplex(
			func(v bool) (int64, bool) {
				if v {
					return 1, true
				}
				return 0, true
			},
			func(v int64) (bool, bool) { return v != 0, true },
			conversion.WithName("BoolInt"),
		),
		conversion.TypedDuplex(
			func(v []byte) (string, bool) { return string(v), true },
			func(v string) ([]byte, bool) { return []byte(v), true },
			conversion.WithName("Bytes"),
		),
		conversion.TypedDuplex(
			func(v []rune) (string, bool) { return string(v), true },
			func(v string) ([]rune, bool) { return []rune(v), true },
			conversion.WithName("Runes"),
		),
		conversion.Typed(func(v fmt.Stringer) (string, bool) {
			return v.String(), true
		}, conversion.WithName("Stringer")),
		conversion.Typed(func(v error) (string, bool) {
			return v.Error(), true
		}, conversion.WithName("Error")),
		conversion.NewFunc(typedecl.Any, typedecl.Of[string](), func(v any) (any, bool) {
			return fmt.Sprint(v), true
		}, conversion.WithLazy(), conversion.WithName("Sprint")),
	}
}

// ParseInt reads the first number in s as an int64. Decimal numbers are
// truncated.
func ParseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	num := firstNumber(s)
	if num == "" {
		return 0, false
	}
	if strings.ContainsAny(num, ".eE") {
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	}
	n, err := strconv.ParseInt(num, 10, 64)
	return n, err == nil
}

// ParseUint reads the first number in s as a uint64. Negative numbers do not
// convert.
func ParseUint(s string) (uint64, bool) {
	n, ok := ParseInt(s)
	if ok {
		return uint64(n), n >= 0
	}
	// Values above MaxInt64 only parse as unsigned.
	num := firstNumber(strings.TrimSpace(s))
	u, err := strconv.ParseUint(num, 10, 64)
	return u, err == nil
}

// ParseFloat reads the first number in s as a float64.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	num := firstNumber(s)
	if num == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseBool accepts the usual spellings of true and false, case
// insensitively: true/false, yes/no, on/off, y/n, t/f, 1/0 and
// enabled/disabled.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "y", "t", "1", "enabled":
		return true, true
	case "false", "no", "off", "n", "f", "0", "disabled":
		return false, true
	}
	return false, false
}

// firstNumber returns the first decimal number in s: an optional sign,
// digits, an optional fraction and an optional exponent.
func firstNumber(s string) string {
	start := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isDigit(c) {
			start = i
			break
		}
		if (c == '-' || c == '+' || c == '.') && i+1 < len(s) && isDigit(s[i+1]) {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}

	i := start
	if s[i] == '-' || s[i] == '+' {
		i++
	}
	i = skipDigits(s, i)
	if i < len(s) && s[i] == '.' && i+1 < len(s) && isDigit(s[i+1]) {
		i = skipDigits(s, i+1)
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '-' || s[j] == '+') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			i = skipDigits(s, j)
		}
	}
	return s[start:i]
}

func skipDigits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
