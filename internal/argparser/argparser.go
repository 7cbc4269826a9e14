// Package argparser extracts typed positional arguments out of the
// comma-separated argument string carried inside a telecommand's
// parentheses: hand-rolled scanning over a byte slice with explicit
// error values, no regexp.
package argparser

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMissingArg is returned when index is beyond the number of
// comma-separated fields present in the argument string.
var ErrMissingArg = errors.New("argparser: missing argument at index")

// ErrMalformed is returned when the field at the requested index does not
// match the expected shape (e.g. non-digit characters for extract_u64).
var ErrMalformed = errors.New("argparser: malformed argument")

// ErrDoesNotFit is returned by ExtractString when the trimmed field is
// longer than the caller's bounded buffer.
var ErrDoesNotFit = errors.New("argparser: argument does not fit in buffer")

// fields splits the raw argument string on commas. An empty string yields
// zero fields (ArgCount below returns 0 for an empty string, matching the
// firmware's "count = 0 if arg-string empty, else commas+1" rule).
func fields(argsStr string) []string {
	if len(argsStr) == 0 {
		return nil
	}
	return strings.Split(argsStr, ",")
}

// ArgCount returns the number of comma-separated fields in argsStr.
func ArgCount(argsStr string) int {
	return len(fields(argsStr))
}

func field(argsStr string, index int) (string, error) {
	fs := fields(argsStr)
	if index < 0 || index >= len(fs) {
		return "", ErrMissingArg
	}
	return fs[index], nil
}

// ExtractU64 reads the longest leading digit run of the index-th
// field. It fails if the field is empty or contains a non-digit
// character anywhere.
func ExtractU64(argsStr string, index int) (uint64, error) {
	tok, err := field(argsStr, index)
	if err != nil {
		return 0, err
	}
	tok = strings.TrimSpace(tok)
	if len(tok) == 0 {
		return 0, ErrMalformed
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return 0, ErrMalformed
		}
	}
	v, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	return v, nil
}

// ExtractString copies the index-th comma-separated field, trimmed of
// surrounding ASCII spaces and tabs, returning an error if it does not
// fit within maxLen bytes.
func ExtractString(argsStr string, index int, maxLen int) (string, error) {
	tok, err := field(argsStr, index)
	if err != nil {
		return "", err
	}
	tok = strings.Trim(tok, " \t")
	if len(tok) > maxLen {
		return "", ErrDoesNotFit
	}
	return tok, nil
}

// ExtractHexArray parses the index-th field as a run of hex digit pairs.
// Spaces and underscores between bytes are ignored, but are forbidden
// within a single byte: an odd nibble count at a separator boundary is
// an error. Parity is tracked per run *between* separators (reset at
// each one), not as a single total across the whole token, so a
// separator landing mid-byte (e.g. "a_b") is caught where it occurs
// rather than only when the overall nibble count happens to come out odd.
func ExtractHexArray(argsStr string, index int) ([]byte, error) {
	tok, err := field(argsStr, index)
	if err != nil {
		return nil, err
	}
	tok = strings.TrimSpace(tok)

	var out []byte
	var high byte
	haveHigh := false
	runNibbles := 0 // nibbles accumulated since the last separator

	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if c == ' ' || c == '_' {
			if runNibbles%2 != 0 {
				return nil, ErrMalformed
			}
			runNibbles = 0
			continue
		}
		nib, ok := hexNibble(c)
		if !ok {
			return nil, ErrMalformed
		}
		if !haveHigh {
			high = nib
			haveHigh = true
		} else {
			out = append(out, high<<4|nib)
			haveHigh = false
		}
		runNibbles++
	}
	if runNibbles%2 != 0 {
		return nil, ErrMalformed
	}
	return out, nil
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// ExtractF64 parses the index-th field as a floating point number with at
// most one leading '-' and at most one '.', neither leading nor trailing;
// otherwise digits only.
func ExtractF64(argsStr string, index int) (float64, error) {
	tok, err := field(argsStr, index)
	if err != nil {
		return 0, err
	}
	tok = strings.TrimSpace(tok)
	if !isValidFloatToken(tok) {
		return 0, ErrMalformed
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, ErrMalformed
	}
	return v, nil
}

func isValidFloatToken(tok string) bool {
	if len(tok) == 0 {
		return false
	}
	i := 0
	if tok[0] == '-' {
		i++
	}
	digits := tok[i:]
	if len(digits) == 0 {
		return false
	}
	if digits[0] == '.' || digits[len(digits)-1] == '.' {
		return false // dot may not lead or trail the digit run.
	}

	seenDot := false
	seenDigit := false
	for _, c := range digits {
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.':
			if seenDot {
				return false
			}
			seenDot = true
		default:
			return false
		}
	}
	return seenDigit
}
