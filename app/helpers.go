package app

import (
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/store"
)

// ABCIStore exposes the abci.Query interface as a ReadOnlyKVStore, so that
// buckets can reuse their key and index logic on a remote or in-process
// application.
type ABCIStore struct {
	app abci.Application
}

var _ clasp.ReadOnlyKVStore = (*ABCIStore)(nil)

// NewABCIStore wraps the application in a read-only store view.
func NewABCIStore(app abci.Application) *ABCIStore {
	return &ABCIStore{app: app}
}

// Get fetches a single value through the abci query interface.
func (a *ABCIStore) Get(key []byte) ([]byte, error) {
	query := a.app.Query(abci.RequestQuery{
		Path: "/",
		Data: key,
	})
	if query.Code != 0 {
		return nil, errors.Wrapf(errors.ErrDatabase, "query failed: %s", query.Log)
	}
	var value ResultSet
	if err := value.Unmarshal(query.Value); err != nil {
		return nil, errors.Wrap(err, "unmarshal result set")
	}
	if len(value.Results) == 0 {
		return nil, nil
	}
	return value.Results[0], nil
}

// Has reports whether the key holds a non-empty value.
func (a *ABCIStore) Has(key []byte) (bool, error) {
	got, err := a.Get(key)
	if err != nil {
		return false, err
	}
	return len(got) > 0, nil
}

// Iterator supports only a full range scan, expressed as a prefix
// query over an empty prefix. Bounded ranges are not serialized over
// abci.
func (a *ABCIStore) Iterator(start, end []byte) (clasp.Iterator, error) {
	if start != nil || end != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "iterator only implemented for entire range")
	}

	query := a.app.Query(abci.RequestQuery{
		Path: "/?" + clasp.PrefixQueryMod,
		Data: nil,
	})
	if query.Code != 0 {
		return nil, errors.Wrapf(errors.ErrDatabase, "query failed: %s", query.Log)
	}
	models, err := toModels(query.Key, query.Value)
	if err != nil {
		return nil, errors.Wrap(err, "cannot convert to model")
	}

	return store.NewSliceIterator(models), nil
}

// ReverseIterator is not supported over the abci query interface.
func (a *ABCIStore) ReverseIterator(start, end []byte) (clasp.Iterator, error) {
	return nil, errors.Wrap(errors.ErrDatabase, "reverse iterator not implemented")
}

func toModels(keys, values []byte) ([]clasp.Model, error) {
	var k, v ResultSet
	if err := k.Unmarshal(keys); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal keys")
	}
	if err := v.Unmarshal(values); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal values")
	}
	return JoinResults(&k, &v)
}
