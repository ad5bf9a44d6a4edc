package entity

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

// Balance is a human formatted token amount ("1,234.56 ETH") together with
// the numeric amount extracted from it once at ingestion.
type Balance struct {
	Display string
	Amount  decimal.Decimal
}

// ParseBalance strips every character that is not a digit or a decimal point
// and parses the longest leading number of what remains. Empty or
// unparseable input yields a zero amount.
func ParseBalance(raw string) Balance {
	var b strings.Builder
	seenPoint := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			if seenPoint {
				// A second point ends the number: "1.2.3" reads as 1.2.
				return Balance{Display: raw, Amount: parseAmount(b.String())}
			}
			seenPoint = true
			b.WriteRune(r)
		}
	}
	return Balance{Display: raw, Amount: parseAmount(b.String())}
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return decimal.Zero
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// MarshalJSON keeps the wire format of the analysis schema: a plain string.
func (b Balance) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(b.Display)
}

// UnmarshalJSON accepts the formatted string and parses it. Numbers are
// tolerated as well since models sometimes drop the quotes.
func (b *Balance) UnmarshalJSON(data []byte) error {
	var v any
	if err := jsoniter.Unmarshal(data, &v); err != nil {
		return err
	}
	switch raw := v.(type) {
	case string:
		*b = ParseBalance(raw)
	case float64:
		*b = ParseBalance(strconv.FormatFloat(raw, 'f', -1, 64))
	case nil:
		*b = Balance{Amount: decimal.Zero}
	default:
		return fmt.Errorf("balance: unexpected JSON type %T", v)
	}
	return nil
}
