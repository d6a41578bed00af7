package utils

import (
	"context"
	"fmt"
	"testing"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/store"
)

func TestSavepoint(t *testing.T) {
	// always write ok, ov before calling functions
	ok, ov := []byte("demo"), []byte("data")
	// some key, value to try to write
	nk, nv := []byte{1, 2, 3}, []byte{4, 5, 6}
	// a default error if desired
	derr := fmt.Errorf("something went wrong")

	cases := map[string]struct {
		save    clasp.Decorator // decorator at savepoint
		handler clasp.Handler
		check   bool // whether to call Check or Deliver
		wantErr bool

		written [][]byte // keys to find
		missing [][]byte // keys not to find
	}{
		"savepoint deactivated, returns error, both written": {
			save:    NewSavepoint(),
			handler: writeHandler{key: nk, value: nv, err: derr},
			check:   true,
			wantErr: true,
			written: [][]byte{ok, nk},
		},
		"savepoint activated, returns error, one written": {
			save:    NewSavepoint().OnCheck(),
			handler: writeHandler{key: nk, value: nv, err: derr},
			check:   true,
			wantErr: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"savepoint activated for deliver, returns error, one written": {
			save:    NewSavepoint().OnDeliver(),
			handler: writeHandler{key: nk, value: nv, err: derr},
			wantErr: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"double-activation maintains both behaviors": {
			save:    NewSavepoint().OnDeliver().OnCheck(),
			handler: writeHandler{key: nk, value: nv, err: derr},
			wantErr: true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"savepoint on check does not affect deliver": {
			save:    NewSavepoint().OnCheck(),
			handler: writeHandler{key: nk, value: nv, err: derr},
			wantErr: true,
			written: [][]byte{ok, nk},
		},
		"no rollback when success returned": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			handler: writeHandler{key: nk, value: nv},
			written: [][]byte{ok, nk},
		},
		"writes pile up when savepoint not used, error case": {
			save:    writeDecorator{key: []byte{1}, value: []byte{2}, after: true},
			handler: writeHandler{key: nk, value: nv, err: derr},
			wantErr: true,
			written: [][]byte{ok, nk, {1}},
		},
		"writes pile up when savepoint not used, success case": {
			save:    writeDecorator{key: []byte{1}, value: []byte{2}},
			handler: writeHandler{key: nk, value: nv},
			check:   true,
			written: [][]byte{ok, nk, {1}},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			kv := store.MemStore()
			if err := kv.Set(ok, ov); err != nil {
				t.Fatalf("cannot set: %+v", err)
			}

			var err error
			if tc.check {
				_, err = tc.save.Check(ctx, kv, nil, tc.handler)
			} else {
				_, err = tc.save.Deliver(ctx, kv, nil, tc.handler)
			}

			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}

			for _, k := range tc.written {
				if ok, err := kv.Has(k); err != nil {
					t.Fatalf("cannot check %x: %+v", k, err)
				} else if !ok {
					t.Errorf("key %x was not written", k)
				}
			}
			for _, k := range tc.missing {
				if ok, err := kv.Has(k); err != nil {
					t.Fatalf("cannot check %x: %+v", k, err)
				} else if ok {
					t.Errorf("key %x was written", k)
				}
			}
		})
	}
}

// writeHandler writes the key, value pair and returns the error (may be nil)
type writeHandler struct {
	key   []byte
	value []byte
	err   error
}

var _ clasp.Handler = writeHandler{}

func (h writeHandler) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	if err := db.Set(h.key, h.value); err != nil {
		return nil, err
	}
	return &clasp.CheckResult{}, h.err
}

func (h writeHandler) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	if err := db.Set(h.key, h.value); err != nil {
		return nil, err
	}
	return &clasp.DeliverResult{}, h.err
}

// writeDecorator writes the key, value pair, either before or after
// calling down the stack
type writeDecorator struct {
	key   []byte
	value []byte
	after bool
}

var _ clasp.Decorator = writeDecorator{}

func (d writeDecorator) Check(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx, next clasp.Checker) (*clasp.CheckResult, error) {
	if !d.after {
		if err := db.Set(d.key, d.value); err != nil {
			return nil, err
		}
	}
	res, err := next.Check(ctx, db, tx)
	if d.after {
		if err := db.Set(d.key, d.value); err != nil {
			return nil, err
		}
	}
	return res, err
}

func (d writeDecorator) Deliver(ctx clasp.Context, db clasp.KVStore, tx clasp.Tx, next clasp.Deliverer) (*clasp.DeliverResult, error) {
	if !d.after {
		if err := db.Set(d.key, d.value); err != nil {
			return nil, err
		}
	}
	res, err := next.Deliver(ctx, db, tx)
	if d.after {
		if err := db.Set(d.key, d.value); err != nil {
			return nil, err
		}
	}
	return res, err
}
