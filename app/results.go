package app

import (
	amino "github.com/tendermint/go-amino"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// ResultSet is a list of keys or values, so a single query response can
// carry any number of matches. Key and value sets of one response always
// have the same size.
type ResultSet struct {
	Results [][]byte
}

var resultsCodec = amino.NewCodec()

// Marshal serializes the result set.
func (r *ResultSet) Marshal() ([]byte, error) {
	return resultsCodec.MarshalBinaryBare(r)
}

// Unmarshal parses a serialized result set into this instance.
func (r *ResultSet) Unmarshal(data []byte) error {
	return resultsCodec.UnmarshalBinaryBare(data, r)
}

// ResultsFromKeys collects the keys of the given models.
func ResultsFromKeys(models []clasp.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues collects the values of the given models.
func ResultsFromValues(models []clasp.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults zips a key set and a value set back into models. The
// two sets must be of equal size.
func JoinResults(keys, values *ResultSet) ([]clasp.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrap(errors.ErrInput, "mismatched result set size")
	}
	mods := make([]clasp.Model, len(kref))
	for i := range mods {
		mods[i] = clasp.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult parses a result set and, when it is not empty,
// loads the first result into o. An empty set leaves o untouched.
func UnmarshalOneResult(bz []byte, o clasp.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return errors.Wrap(err, "unmarshal result set")
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}
