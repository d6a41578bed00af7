package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/store"
)

func TestRecoveryTurnsPanicIntoError(t *testing.T) {
	var h panicHandler
	ctx := context.Background()
	db := store.MemStore()

	// Without the decorator the handler goes down.
	assert.Panics(t, func() { h.Check(ctx, db, nil) })
	assert.Panics(t, func() { h.Deliver(ctx, db, nil) })

	r := NewRecovery()
	if _, err := r.Check(ctx, db, nil, h); !errors.ErrPanic.Is(err) {
		t.Fatalf("want a panic error, got %+v", err)
	}
	if _, err := r.Deliver(ctx, db, nil, h); !errors.ErrPanic.Is(err) {
		t.Fatalf("want a panic error, got %+v", err)
	}
}

type panicHandler struct{}

var _ clasp.Handler = panicHandler{}

func (panicHandler) Check(clasp.Context, clasp.KVStore, clasp.Tx) (*clasp.CheckResult, error) {
	panic("check panic")
}

func (panicHandler) Deliver(clasp.Context, clasp.KVStore, clasp.Tx) (*clasp.DeliverResult, error) {
	panic("deliver panic")
}
