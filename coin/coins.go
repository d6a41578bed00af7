package coin

import (
	"sort"
	"strings"

	"github.com/clasp-io/clasp/errors"
)

// Coins is a set of coins, at most one per ticker, kept sorted by
// ticker. Operations assume this normalized form; build instances
// through CombineCoins or NormalizeCoins rather than by hand.
type Coins []*Coin

// CombineCoins builds a normalized set from any mix of coins, merging
// duplicate tickers and dropping zero values along the way.
func CombineCoins(cs ...Coin) (Coins, error) {
	set := make(Coins, 0, len(cs))
	for _, c := range cs {
		var err error
		if set, err = set.Add(c); err != nil {
			return nil, err
		}
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Clone returns a copy that can be safely modified.
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	out := make(Coins, len(cs))
	for i, c := range cs {
		out[i] = c.Clone()
	}
	return out
}

// Add returns the set with the holdings increased by c. A sum reaching
// zero drops the ticker from the set entirely.
func (cs Coins) Add(c Coin) (Coins, error) {
	if c.IsZero() {
		return cs, nil
	}

	at, found := cs.tickerPos(c.Ticker)
	if found {
		sum, err := cs[at].Add(c)
		if err != nil {
			return nil, err
		}
		if sum.IsZero() {
			return append(cs[:at], cs[at+1:]...), nil
		}
		cs[at] = &sum
		return cs, nil
	}

	if at == len(cs) {
		return append(cs, &c), nil
	}
	// keep the ticker order, insert in the middle
	out := append(cs, nil)
	copy(out[at+1:], out[at:])
	out[at] = &c
	return out, nil
}

// Subtract returns the set with the holdings decreased by c. The
// result may hold negative amounts.
func (cs Coins) Subtract(c Coin) (Coins, error) {
	return cs.Add(c.Negative())
}

// Combine returns a new set holding the sum of both sets.
func (cs Coins) Combine(o Coins) (Coins, error) {
	out := cs.Clone()
	for _, c := range o {
		var err error
		if out, err = out.Add(*c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Contains reports whether the set holds at least that much of the
// coin's ticker. When true, Subtract(c) leaves no negative amount.
func (cs Coins) Contains(c Coin) bool {
	at, found := cs.tickerPos(c.Ticker)
	return found && cs[at].IsGTE(c)
}

// tickerPos locates a ticker in the sorted set. When found is false,
// at is the position where the ticker belongs.
func (cs Coins) tickerPos(ticker string) (at int, found bool) {
	for i, c := range cs {
		switch strings.Compare(ticker, c.Ticker) {
		case 0:
			return i, true
		case -1:
			return i, false
		}
	}
	return len(cs), false
}

// IsEmpty returns true for a set holding no coins.
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// IsPositive returns true if the set is not empty and every coin in it
// is positive.
func (cs Coins) IsPositive() bool {
	return !cs.IsEmpty() && cs.IsNonNegative()
}

// IsNonNegative returns true if no coin in the set is negative. An
// empty set qualifies.
func (cs Coins) IsNonNegative() bool {
	for _, c := range cs {
		if !c.IsPositive() {
			return false
		}
	}
	return true
}

// Equals returns true if both sets hold exactly the same coins.
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Count returns the number of tickers in the set.
func (cs Coins) Count() int {
	return len(cs)
}

// Validate checks that every coin is valid on its own, that no coin is
// zero and that the set is sorted by ticker.
func (cs Coins) Validate() error {
	var err error
	last := ""
	for _, c := range cs {
		err = errors.Append(err, errors.Wrap(c.Validate(), "coin"))
		if c.IsZero() {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "zero coins"))
		}
		if c.Ticker < last {
			err = errors.Append(err, errors.Wrap(errors.ErrState, "not sorted"))
		}
		last = c.Ticker
	}
	return err
}

// NormalizeCoins merges duplicate tickers, drops zero coins and sorts
// the set. An already normalized set is returned as is.
func NormalizeCoins(cs Coins) (Coins, error) {
	switch len(cs) {
	case 0:
		return nil, nil
	case 1:
		if IsEmpty(cs[0]) {
			return nil, nil
		}
		return cs, nil
	}

	if isNormalized(cs) {
		return cs, nil
	}

	byTicker := make(map[string]Coin)
	for _, c := range cs {
		sum, ok := byTicker[c.Ticker]
		if !ok {
			byTicker[c.Ticker] = *c
			continue
		}
		sum, err := sum.Add(*c)
		if err != nil {
			return nil, errors.Wrap(err, "cannot sum coins")
		}
		byTicker[c.Ticker] = sum
	}

	out := make(Coins, 0, len(byTicker))
	for _, c := range byTicker {
		if c.IsZero() {
			// carries no value
			continue
		}
		c := c
		out = append(out, &c)
	}
	if len(out) == 0 {
		return nil, nil
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ticker < out[j].Ticker
	})
	return out, nil
}

// isNormalized is the cheap check whether a set needs normalization:
// sorted, unique tickers, no zero or nil coins.
func isNormalized(cs []*Coin) bool {
	last := ""
	for i, c := range cs {
		if IsEmpty(c) {
			return false
		}
		if i > 0 && c.Ticker <= last {
			return false
		}
		last = c.Ticker
	}
	return true
}
