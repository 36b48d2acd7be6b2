package expenses

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errNotANumber = errors.New("not a number")

// maxNumberLen bounds the textual length of a numeric field.
const maxNumberLen = 32

// Number is a numeric request field. It accepts a JSON number or a string,
// and strings may use either '.' or ',' as the decimal separator.
// A null, missing or blank value is absent.
type Number struct {
	raw string
}

// NumberOf wraps a raw textual value.
func NumberOf(s string) Number {
	return Number{raw: strings.TrimSpace(s)}
}

// Present reports whether a value was supplied.
func (n Number) Present() bool {
	return n.raw != ""
}

// Decimal parses the value.
func (n Number) Decimal() (decimal.Decimal, error) {
	return ParseNumber(n.raw)
}

func (n Number) String() string {
	return n.raw
}

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = Number{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	*n = NumberOf(s)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(n.raw)
}

// ParseNumber converts "12.5" or "12,5" into a decimal. Exponent notation,
// NaN and infinities fail.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || len(s) > maxNumberLen || strings.Count(s, ".") > 1 || strings.ContainsAny(s, "eE") {
		return decimal.Zero, errNotANumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errNotANumber
	}
	return d, nil
}
