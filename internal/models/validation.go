package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePositiveInt reads a JSON value as a strictly positive integer.
// Numbers and numeric strings are accepted when their value is integral
// ("50", "+50", 50, 50.0, 5e1). Booleans, null, fractions, zero and negatives are not.
func ParsePositiveInt(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var text string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		text = string(raw)
	default:
		return 0, false
	}

	if text == "" || len(text) > maxQueryText {
		return 0, false
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return 0, false
	}
	// Rescaling to an unbounded exponent allocates 10^|exp|, so the
	// exponent is bounded before any comparison
	if exp := value.Exponent(); exp > maxQueryExponent || exp < -maxQueryText {
		return 0, false
	}
	if !value.IsInteger() || !value.IsPositive() {
		return 0, false
	}
	// Cap at int32 so the value fits every storage driver's integer column
	if value.GreaterThan(decimal.NewFromInt(maxQueryValue)) {
		return 0, false
	}

	return int(value.IntPart()), true
}

const (
	maxQueryValue = 1<<31 - 1

	// maxQueryText bounds the coefficient, so an exponent below its negation
	// can only describe a fraction
	maxQueryText = 32

	// Any non-zero coefficient times 10^10 already exceeds maxQueryValue
	maxQueryExponent = 9
)
