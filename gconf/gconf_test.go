package gconf

import (
	"encoding/json"
	"testing"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/clasptest"
	"github.com/clasp-io/clasp/clasptest/assert"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/store"
)

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		Conf        Configuration
		Want        Configuration
		WantSaveErr *errors.Error
	}{
		"string": {
			Conf: &jsonConf{Text: "foobar"},
			Want: &jsonConf{},
		},
		"all fields": {
			Conf: &jsonConf{
				Text:  "foobar",
				Num:   852151421,
				Cn:    coin.NewCoin(51, "CLP"),
				Owner: clasptest.RandomAddr(t),
			},
			Want: &jsonConf{},
		},
		"invalid configuration cannot be saved": {
			Conf:        &jsonConf{Text: "invalid"},
			WantSaveErr: errors.ErrState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "mypkg", tc.Conf); !tc.WantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			if tc.WantSaveErr != nil {
				return
			}

			if err := Load(db, "mypkg", tc.Want); err != nil {
				t.Fatalf("cannot load configuration: %s", err)
			}
			assert.Equal(t, tc.Conf, tc.Want)
		})
	}
}

func TestLoadMissingConfiguration(t *testing.T) {
	db := store.MemStore()
	var c jsonConf
	if err := Load(db, "mypkg", &c); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}
}

func TestInitConfig(t *testing.T) {
	cases := map[string]struct {
		Opts    clasp.Options
		WantErr *errors.Error
		Want    jsonConf
	}{
		"configuration in genesis": {
			Opts: clasp.Options{
				"conf": json.RawMessage(`{"mypkg": {"text": "foo", "num": 42}}`),
			},
			Want: jsonConf{Text: "foo", Num: 42},
		},
		"no configuration for the package": {
			Opts: clasp.Options{
				"conf": json.RawMessage(`{"otherpkg": {"text": "foo"}}`),
			},
			WantErr: errors.ErrNotFound,
		},
		"no conf section at all": {
			Opts:    clasp.Options{},
			WantErr: errors.ErrNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			var c jsonConf
			if err := InitConfig(db, tc.Opts, "mypkg", &c); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected init error: %+v", err)
			}
			if tc.WantErr != nil {
				return
			}

			var got jsonConf
			if err := Load(db, "mypkg", &got); err != nil {
				t.Fatalf("cannot load configuration: %s", err)
			}
			assert.Equal(t, tc.Want, got)
		})
	}
}

// jsonConf is a test configuration that serializes to JSON.
type jsonConf struct {
	Owner clasp.Address `json:"owner"`
	Text  string        `json:"text"`
	Num   int64         `json:"num"`
	Cn    coin.Coin     `json:"cn"`
}

func (c *jsonConf) Marshal() ([]byte, error)   { return json.Marshal(c) }
func (c *jsonConf) Unmarshal(raw []byte) error { return json.Unmarshal(raw, &c) }

func (c *jsonConf) Validate() error {
	if c.Text == "invalid" {
		return errors.Wrap(errors.ErrState, "invalid text")
	}
	return nil
}
