package clasp

import (
	"encoding/json"
	"time"

	"github.com/clasp-io/clasp/errors"
)

// UnixTime is a point in time in POSIX seconds. State and messages
// use this primitive int64 instead of time.Time so that deadlines
// compare identically on every ledger sharing them, regardless of
// sub-second precision support.
type UnixTime int64

// Time converts to the equivalent time.Time moment.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// IsZero reports whether this is the zero time.
func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add shifts the time by the given duration, truncated to seconds.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// AsUnixTime converts a time.Time moment to its POSIX seconds form.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// UnmarshalJSON accepts both a plain number and a time.Time string.
// The numeric form is the wire default, the string form is handy in
// configuration files such as the genesis.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixTime(unix)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		unix := UnixTime(stdtime.Unix())
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = unix
		return nil
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

// MarshalJSON renders the time as a plain number.
func (t UnixTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(t))
}

// Validate rejects times before the epoch.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

// String formats the moment the way time.Time would.
func (t UnixTime) String() string {
	return t.Time().String()
}

// IsExpired reports whether the deadline is strictly before the
// current block time. At the very moment a deadline points to it is
// not yet expired.
//
// IsExpired panics outside of a block context.
func IsExpired(ctx Context, deadline UnixTime) bool {
	blockNow, err := BlockTime(ctx)
	if err != nil {
		panic("block time is not present")
	}
	return AsUnixTime(blockNow) > deadline
}
