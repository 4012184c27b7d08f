package coerce

import (
	"math"
	"math/big"
	"strconv"
	"unicode"
	"unicode/utf16"

	"github.com/nektos/coerce/pkg/value"
)

// IsWhitespace reports whether the code unit is white space or a line
// terminator for the purpose of numeric parsing and trimming.
func IsWhitespace(u uint16) bool {
	switch u {
	case '\t', '\v', '\f', ' ', 0x00A0, 0xFEFF, '\n', '\r', 0x2028, 0x2029:
		return true
	}
	return unicode.Is(unicode.Zs, rune(u))
}

func trimUnits(units []uint16) []uint16 {
	start, end := 0, len(units)
	for start < end && IsWhitespace(units[start]) {
		start++
	}
	for end > start && IsWhitespace(units[end-1]) {
		end--
	}
	return units[start:end]
}

func trimLeftUnits(units []uint16) []uint16 {
	start := 0
	for start < len(units) && IsWhitespace(units[start]) {
		start++
	}
	return units[start:]
}

// ParseNumericString converts a string to a number. It never fails:
// anything that is not a complete numeric literal yields NaN.
func ParseNumericString(s value.Value) float64 {
	units, _ := s.AsUnits()
	return parseNumericUnits(units)
}

func parseNumericUnits(units []uint16) float64 {
	units = trimUnits(units)
	if len(units) == 0 {
		return 0
	}
	text, ok := asciiText(units)
	if !ok {
		return math.NaN()
	}

	switch text {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if base, digits, ok := splitRadixPrefix(text); ok {
		n, ok := parseRadixDigits(digits, base)
		if !ok {
			return math.NaN()
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	}

	if decimalLiteralLength(text) != len(text) {
		return math.NaN()
	}
	// out of range literals come back as ±Inf with ErrRange, which is the
	// intended result
	f, _ := strconv.ParseFloat(text, 64)
	return f
}

// asciiText narrows code units to a Go string when all of them are ASCII.
// Numeric literals are ASCII only.
func asciiText(units []uint16) (string, bool) {
	b := make([]byte, len(units))
	for i, u := range units {
		if u > 0x7f {
			return "", false
		}
		b[i] = byte(u)
	}
	return string(b), true
}

func splitRadixPrefix(text string) (int, string, bool) {
	if len(text) < 2 || text[0] != '0' {
		return 0, "", false
	}
	switch text[1] {
	case 'x', 'X':
		return 16, text[2:], true
	case 'o', 'O':
		return 8, text[2:], true
	case 'b', 'B':
		return 2, text[2:], true
	}
	return 0, "", false
}

func parseRadixDigits(digits string, base int) (*big.Int, bool) {
	if digits == "" {
		return nil, false
	}
	for i := 0; i < len(digits); i++ {
		if digitValue(digits[i]) >= base {
			return nil, false
		}
	}
	return new(big.Int).SetString(digits, base)
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}

// decimalLiteralLength returns the length of the longest prefix of text that
// is a decimal literal: [sign] digits [. digits] [e [sign] digits], with at
// least one digit in the mantissa. It returns 0 when no prefix matches.
func decimalLiteralLength(text string) int {
	i := 0
	if i < len(text) && (text[i] == '+' || text[i] == '-') {
		i++
	}
	intStart := i
	for i < len(text) && isDecimalDigit(text[i]) {
		i++
	}
	mantissaDigits := i - intStart
	if i < len(text) && text[i] == '.' {
		j := i + 1
		for j < len(text) && isDecimalDigit(text[j]) {
			j++
		}
		mantissaDigits += j - i - 1
		if mantissaDigits > 0 {
			i = j
		}
	}
	if mantissaDigits == 0 {
		return 0
	}
	if i < len(text) && (text[i] == 'e' || text[i] == 'E') {
		j := i + 1
		if j < len(text) && (text[j] == '+' || text[j] == '-') {
			j++
		}
		expStart := j
		for j < len(text) && isDecimalDigit(text[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}
	return i
}

func isDecimalDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// StringToBigInt parses a string as an integer literal: white space is
// trimmed, the empty string is zero, radix prefixes are accepted without a
// sign and decimal digits with an optional sign.
func StringToBigInt(s value.Value) (*big.Int, bool) {
	units, _ := s.AsUnits()
	units = trimUnits(units)
	if len(units) == 0 {
		return new(big.Int), true
	}
	text, ok := asciiText(units)
	if !ok {
		return nil, false
	}
	if base, digits, ok := splitRadixPrefix(text); ok {
		return parseRadixDigits(digits, base)
	}
	sign := ""
	if text[0] == '+' || text[0] == '-' {
		sign, text = text[:1], text[1:]
	}
	if text == "" {
		return nil, false
	}
	for i := 0; i < len(text); i++ {
		if !isDecimalDigit(text[i]) {
			return nil, false
		}
	}
	return new(big.Int).SetString(sign+text, 10)
}

func unitsOf(s string) []uint16 {
	return utf16.Encode([]rune(s))
}
