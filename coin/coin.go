package coin

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/clasp-io/clasp/errors"
)

// IsCC is the RegExp to ensure valid currency codes
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// MaxAmount is the largest amount we accept. Amounts are integers in
	// the smallest denomination of the asset, subunit resolution is up to
	// the ledger that issued the ticker.
	MaxAmount int64 = 999999999999999 // 10^15-1
	// MinAmount is the lowest amount we accept
	MinAmount = -MaxAmount
)

// Coin is an amount of a single currency. The amount is denominated in
// the smallest unit of the ticker, there are no fractions.
type Coin struct {
	Ticker string `json:"ticker"`
	Amount int64  `json:"amount"`
}

// NewCoin builds a coin value.
func NewCoin(amount int64, ticker string) Coin {
	return Coin{
		Ticker: ticker,
		Amount: amount,
	}
}

// NewCoinp builds a coin and returns its address.
func NewCoinp(amount int64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

// ID returns a coin ticker name.
func (c Coin) ID() string {
	return c.Ticker
}

// Add sums two coins of the same currency. Mixing currencies or
// leaving the valid amount range is an error.
func (c Coin) Add(o Coin) (Coin, error) {
	// If any of the coins represents no value and does not have a ticker
	// set then it has no influence on the addition result.
	if c.Ticker == "" && c.IsZero() {
		return o, nil
	}
	if o.Ticker == "" && o.IsZero() {
		return c, nil
	}

	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrCurrency, "adding %s to %s", o.Ticker, c.Ticker)
	}

	c.Amount += o.Amount
	if c.Amount < MinAmount || c.Amount > MaxAmount {
		return Coin{}, errors.ErrOverflow
	}
	return c, nil
}

// Negative returns the coin with its amount negated, so that
// c.Add(c.Negative()) is zero.
func (c Coin) Negative() Coin {
	return Coin{
		Ticker: c.Ticker,
		Amount: -1 * c.Amount,
	}
}

// Subtract decreases the coin by the given amount.
func (c Coin) Subtract(amount Coin) (Coin, error) {
	return c.Add(amount.Negative())
}

// Compare orders two coins by amount alone: 1 if c is larger, -1 if
// o is larger, 0 on equal amounts. Currency codes are not inspected,
// check SameType separately when it matters.
func (c Coin) Compare(o Coin) int {
	switch {
	case c.Amount > o.Amount:
		return 1
	case c.Amount < o.Amount:
		return -1
	default:
		return 0
	}
}

// Equals returns true when both ticker and amount match.
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount == o.Amount
}

// IsEmpty returns true for a nil coin or a zero amount.
func IsEmpty(c *Coin) bool {
	return c == nil || c.IsZero()
}

// IsZero returns true when the amount is 0.
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// IsPositive returns true when the amount is above 0.
func (c Coin) IsPositive() bool {
	return c.Amount > 0
}

// IsNonNegative returns true when the amount is 0 or higher.
func (c Coin) IsNonNegative() bool {
	return c.Amount >= 0
}

// IsGTE returns true when c is the same currency and at least as
// large as o.
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount >= o.Amount
}

// SameType returns true when both coins share the currency code.
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone returns an independent copy of the coin.
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	return &Coin{
		Ticker: c.Ticker,
		Amount: c.Amount,
	}
}

// Validate checks the currency code and the amount range. Negative
// amounts pass; reject them at the call site where they are not
// acceptable.
func (c Coin) Validate() error {
	var err error
	if !IsCC(c.Ticker) {
		err = errors.Append(err, errors.Wrapf(errors.ErrCurrency, "invalid currency: %s", c.Ticker))
	}
	if c.Amount < MinAmount || c.Amount > MaxAmount {
		err = errors.Append(err, errors.ErrOverflow)
	}
	return err
}

func (c *Coin) UnmarshalJSON(raw []byte) error {
	// A plain string is the human readable "<amount> <ticker>" form.
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		parsed, err := ParseHumanFormat(human)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	// Otherwise expect the structural form. A shadow type avoids
	// recursing into this method.
	var coin struct {
		Ticker string `json:"ticker"`
		Amount int64  `json:"amount"`
	}
	if err := json.Unmarshal(raw, &coin); err != nil {
		return err
	}
	c.Ticker = coin.Ticker
	c.Amount = coin.Amount
	return nil
}

// String provides a human readable representation of the coin. For a
// valid coin the result can be parsed back with ParseHumanFormat. For an
// invalid coin (ie. without a ticker) a readable representation is
// returned but it cannot be parsed back.
func (c Coin) String() string {
	out := strconv.FormatInt(c.Amount, 10)
	if c.Ticker != "" {
		out += " " + c.Ticker
	}
	return out
}

// ParseHumanFormat parses the "<amount> <ticker>" string form of a
// coin, with an optional leading minus sign.
func ParseHumanFormat(h string) (Coin, error) {
	var c Coin
	results := humanCoinFormatRx.FindAllStringSubmatch(h, -1)
	if len(results) != 1 {
		return c, errors.Wrapf(errors.ErrInput, "invalid coin format: %q", h)
	}

	result := results[0][1:]

	amount, err := strconv.ParseInt(result[1], 10, 64)
	if err != nil {
		return c, errors.Wrapf(errors.ErrInput, "invalid amount: %s", err)
	}
	if result[0] == "-" {
		amount = -amount
	}

	return Coin{
		Ticker: result[2],
		Amount: amount,
	}, nil
}

var humanCoinFormatRx = regexp.MustCompile(`^(\-?)\s*(\d+)\s*([A-Z]{3,4})$`)

// Set parses the human readable form into this coin. It implements
// the flag.Value interface so a coin can be a command line argument.
func (c *Coin) Set(raw string) error {
	val, err := ParseHumanFormat(raw)
	if err != nil {
		return err
	}
	*c = val
	return nil
}
