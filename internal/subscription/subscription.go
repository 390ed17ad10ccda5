// Package subscription models the on-chain subscription terms a ticket
// grants access against, and caches them so the gateway does not hit the
// chain for every query.
package subscription

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"
)

// ErrInvalidTimestamp reports a raw contract timestamp that cannot
// represent a calendar instant.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Subscription is the active terms read from the subscriptions contract.
// Rate is in the contract's token units; uint128 on chain, so *big.Int
// here. Subscriptions are derived data, never signed.
type Subscription struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Rate  *big.Int  `json:"rate"`
}

// FromTuple converts the raw (start, end, rate) tuple returned by the
// contract into a Subscription. Timestamps are unix seconds; values
// beyond the int64 range cannot form a time.Time and are rejected.
func FromTuple(start, end uint64, rate *big.Int) (Subscription, error) {
	toTime := func(t uint64) (time.Time, error) {
		if t > math.MaxInt64 {
			return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidTimestamp, t)
		}
		return time.Unix(int64(t), 0).UTC(), nil
	}
	s, err := toTime(start)
	if err != nil {
		return Subscription{}, err
	}
	e, err := toTime(end)
	if err != nil {
		return Subscription{}, err
	}
	if rate == nil {
		rate = new(big.Int)
	}
	return Subscription{Start: s, End: e, Rate: rate}, nil
}

// ActiveAt reports whether the subscription window covers t. The start
// is inclusive, the end exclusive.
func (s Subscription) ActiveAt(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}
