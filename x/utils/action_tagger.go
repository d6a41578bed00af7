package utils

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionKey is used by ActionTagger as the tag key.
const ActionKey = "action"

// ActionTagger will inspect the message being executed and tag the delivery
// with the message path. This allows for subscriptions and searches filtered
// by the message type.
type ActionTagger struct{}

var _ clasp.Decorator = ActionTagger{}

// NewActionTagger creates an ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

// Check just passes the request along
func (ActionTagger) Check(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx, next clasp.Checker) (*clasp.CheckResult, error) {
	return next.Check(ctx, store, tx)
}

// Deliver appends an action tag on the result if there is no error
func (ActionTagger) Deliver(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx, next clasp.Deliverer) (*clasp.DeliverResult, error) {
	res, err := next.Deliver(ctx, store, tx)
	if err != nil {
		return res, err
	}
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot unpack message")
	}
	tag := common.KVPair{Key: []byte(ActionKey), Value: []byte(msg.Path())}
	res.Tags = append(res.Tags, tag)
	return res, err
}
