// Package core provides money parsing and handling utilities.
//
// Amounts coming from bank and tax-agency exports are messy: decimal
// commas, currency symbols after the number, trailing text. ParseAmount
// keeps the longest numeric prefix instead of rejecting the value.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a decimal amount.
//
// The decimal comma is normalized to a dot, leading whitespace is skipped
// and the longest prefix of the form [+-]digits[.digits] is parsed.
// ok is false when no digits were found; the amount is then zero.
//
// Examples:
//
//	ParseAmount("12.34")     -> 12.34, true
//	ParseAmount("12,34")     -> 12.34, true
//	ParseAmount("1.234,56")  -> 1.234, true (second separator ends the number)
//	ParseAmount("15000 ARS") -> 15000, true
//	ParseAmount("abc")       -> 0, false
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	end := numericPrefix(s)
	if end == 0 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSuffix(s[:end], "."), "+"))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// numericPrefix returns the length of the leading signed decimal number in
// s, or 0 when s does not start with one.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
			frac++
		}
		if frac > 0 || digits > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	return i
}

// ParseCents reads an integer count of minor currency units and returns
// the amount in currency units. Fixed-width exports store 123.45 as
// "000000012345".
func ParseCents(s string) (decimal.Decimal, bool) {
	d, ok := ParseAmount(s)
	if !ok {
		return decimal.Zero, false
	}
	return d.Shift(-2), true
}

// FormatPesos renders an amount the way es-AR locales do: dot thousands
// separator, comma decimals, at most two decimals and none when whole.
func FormatPesos(d decimal.Decimal) string {
	neg := d.IsNegative()
	d = d.Abs().Round(2)
	whole := d.Truncate(0).String()
	frac := d.Sub(d.Truncate(0)).Shift(2).IntPart()

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != 0 {
		fs := decimal.NewFromInt(frac).String()
		if len(fs) == 1 {
			fs = "0" + fs
		}
		out += "," + strings.TrimSuffix(fs, "0")
	}
	if neg {
		return "-" + out
	}
	return out
}
