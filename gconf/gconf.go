package gconf

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// ReadStore is the read-only part of clasp.KVStore that this package
// needs.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store extends ReadStore with writes.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// Unmarshaler can load its state from a binary representation.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// ValidMarshaler can serialize itself and check its own sanity.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

// confKey returns the singleton key a package configuration is stored
// under.
func confKey(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates the configuration and writes it to the package
// singleton slot.
func Save(db Store, pkg string, src ValidMarshaler) error {
	key := confKey(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", key)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal: key %q", key)
	}
	return db.Set(key, raw)
}

// Load reads the package configuration into dst. A package that never
// stored a configuration results in ErrNotFound.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	key := confKey(pkg)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal: key %q", key)
	}
	return nil
}

// InitConfig parses opts["conf"][pkg] into conf and persists it. It is
// meant to be called from a genesis initializer.
func InitConfig(db Store, opts clasp.Options, pkg string, conf Configuration) error {
	var all clasp.Options
	if err := opts.ReadOptions("conf", &all); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if all[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := all.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read configuration for %s", pkg)
	}
	return errors.Wrapf(Save(db, pkg, conf), "save configuration for %s", pkg)
}
