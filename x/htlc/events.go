package htlc

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/orm"
)

var _ orm.Model = (*Event)(nil)

// Validate ensures the event carries exactly one payload.
func (e *Event) Validate() error {
	var n int
	if e.Locked != nil {
		n++
	}
	if e.Claimed != nil {
		n++
	}
	if e.Refunded != nil {
		n++
	}
	if n != 1 {
		return errors.Wrapf(errors.ErrState, "want one payload, got %d", n)
	}
	if e.Height < 0 {
		return errors.Wrap(errors.ErrState, "negative height")
	}
	return e.Time.Validate()
}

var eventSeq = orm.NewSequence("htlcevt", "id")

// NewEventBucket returns the bucket holding the append-only swap log.
// Entries are keyed by a monotonic sequence, so iterating the bucket
// in key order replays the log and a range query serves a relayer
// that polls for entries past the last one it processed.
func NewEventBucket() orm.ModelBucket {
	return orm.NewModelBucket("htlcevt", &Event{},
		orm.WithIDSequence(eventSeq),
	)
}

// appendEvent writes one entry to the swap log, stamped with the block
// height and time of the surrounding transaction.
func appendEvent(ctx clasp.Context, db clasp.KVStore, bucket orm.ModelBucket, ev *Event) error {
	if height, ok := clasp.GetHeight(ctx); ok {
		ev.Height = height
	}
	if blockNow, err := clasp.BlockTime(ctx); err == nil {
		ev.Time = clasp.AsUnixTime(blockNow)
	}
	if _, err := bucket.Put(db, nil, ev); err != nil {
		return errors.Wrap(err, "cannot append event")
	}
	return nil
}
