package cash

import (
	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/orm"
)

// BucketName is where we store the wallets.
const BucketName = "cash"

//---- Set

// Validate requires that all coins are in alphabetical order and that
// every amount is within the valid range.
func (s *Set) Validate() error {
	return s.Coins.Validate()
}

// Copy makes a new set with the same coins.
func (s *Set) Copy() *Set {
	return &Set{
		Coins: s.Coins.Clone(),
	}
}

//---- Wallet

// Wallet is the object we pass around in the code. It combines a set of
// coins with the owning address and implements orm.Object so it can be
// stored in the bucket directly.
type Wallet struct {
	key   []byte
	value *Set
}

var _ orm.Object = (*Wallet)(nil)

// NewWallet creates an empty wallet with this address.
func NewWallet(key clasp.Address) *Wallet {
	return &Wallet{
		key:   key,
		value: new(Set),
	}
}

// WalletWith creates a wallet with an initial balance.
func WalletWith(key clasp.Address, coins ...*coin.Coin) (*Wallet, error) {
	w := NewWallet(key)
	if err := w.Concat(coins); err != nil {
		return nil, err
	}
	return w, nil
}

// Value gets the value stored in the object.
func (w Wallet) Value() clasp.Persistent {
	return w.value
}

// Key returns the key to store the object under.
func (w Wallet) Key() []byte {
	return w.key
}

// Validate makes sure the address is set and delegates to the value
// validator.
func (w Wallet) Validate() error {
	if err := clasp.Address(w.key).Validate(); err != nil {
		return errors.Wrap(err, "wallet key")
	}
	return w.value.Validate()
}

// SetKey updates the wallet address. Used when loading from the bucket.
func (w *Wallet) SetKey(key []byte) {
	w.key = key
}

// Clone makes a deep copy of this object.
func (w *Wallet) Clone() orm.Object {
	res := &Wallet{
		value: w.value.Copy(),
	}
	if len(w.key) > 0 {
		res.key = append([]byte(nil), w.key...)
	}
	return res
}

// Coins returns the coins stored in the wallet.
func (w Wallet) Coins() coin.Coins {
	return w.value.Coins
}

// Add modifies the wallet to add the given coin.
func (w *Wallet) Add(c coin.Coin) error {
	cs, err := w.Coins().Add(c)
	if err != nil {
		return err
	}
	w.value.Coins = cs
	return nil
}

// Subtract modifies the wallet to remove the given coin.
func (w *Wallet) Subtract(c coin.Coin) error {
	return w.Add(c.Negative())
}

// Concat combines the given coins with the wallet content, normalizing
// the result so there are no duplicates or zero values.
func (w *Wallet) Concat(coins coin.Coins) error {
	joint, err := w.Coins().Combine(coins)
	if err != nil {
		return err
	}
	w.value.Coins = joint
	return nil
}

//---- Bucket

// Bucket is a type-safe wrapper around orm.Bucket.
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a cash.Bucket with the default name.
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, NewWallet(nil)),
	}
}

// Get loads the wallet stored under the address, or nil if none exists.
func (b Bucket) Get(db clasp.ReadOnlyKVStore, key clasp.Address) (*Wallet, error) {
	obj, err := b.Bucket.Get(db, key)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.(*Wallet), nil
}

// Save persists the wallet.
func (b Bucket) Save(db clasp.KVStore, wallet *Wallet) error {
	return b.Bucket.Save(db, wallet)
}

// GetOrCreate loads the wallet, or returns a fresh empty one if the
// address was never used before.
func (b Bucket) GetOrCreate(db clasp.ReadOnlyKVStore, key clasp.Address) (*Wallet, error) {
	wallet, err := b.Get(db, key)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		wallet = NewWallet(key)
	}
	return wallet, nil
}
