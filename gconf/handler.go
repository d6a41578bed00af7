package gconf

import (
	"reflect"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/x"
)

// OwnedConfig is a configuration that names its owner. Only the owner
// can authorize a patch.
type OwnedConfig interface {
	Unmarshaler
	ValidMarshaler
	GetOwner() clasp.Address
}

type UpdateConfigurationHandler struct {
	pkg string
	// config provides the concrete type the stored data is loaded into.
	config    OwnedConfig
	auth      x.Authenticator
	initAdmin func(clasp.ReadOnlyKVStore) (clasp.Address, error)
}

var _ clasp.Handler = (*UpdateConfigurationHandler)(nil)

// NewUpdateConfigurationHandler returns a handler for configuration
// patch messages. Every patch must be signed by the current
// configuration owner.
//
// A configuration that was never created (missing from the genesis)
// has no owner to authorize its creation. The optional initConfAdmin
// callback breaks that cycle: it names an address allowed to create
// the missing configuration. It is consulted only as long as no
// configuration exists; from then on the stored owner decides.
func NewUpdateConfigurationHandler(pkg string, config OwnedConfig, auth x.Authenticator, initConfAdmin func(clasp.ReadOnlyKVStore) (clasp.Address, error)) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:       pkg,
		config:    config,
		auth:      auth,
		initAdmin: initConfAdmin,
	}
}

func (h UpdateConfigurationHandler) Check(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx) (*clasp.CheckResult, error) {
	err := h.applyTx(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return &clasp.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx) (*clasp.DeliverResult, error) {
	err := h.applyTx(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return &clasp.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) applyTx(ctx clasp.Context, store clasp.KVStore, tx clasp.Tx) error {
	if err := h.authorize(ctx, store); err != nil {
		return err
	}

	payload, err := patchPayload(tx)
	if err != nil {
		return errors.Wrap(err, "cannot get message payload")
	}
	if err := patch(h.config, payload); err != nil {
		return errors.Wrap(err, "cannot patch config with message payload")
	}
	return errors.Wrap(Save(store, h.pkg, h.config), "cannot save updated config")
}

// authorize loads the current configuration into h.config and ensures
// the transaction is signed by whoever may change it, the stored owner
// or, for a configuration that does not exist yet, the init admin.
func (h UpdateConfigurationHandler) authorize(ctx clasp.Context, store clasp.KVStore) error {
	switch err := Load(store, h.pkg, h.config); {
	case err == nil:
		owner := h.config.GetOwner()
		if owner == nil {
			return errors.Wrap(errors.ErrUnauthorized, "owner signature required")
		}
		if !h.auth.HasAddress(ctx, owner) {
			return errors.Wrap(errors.ErrUnauthorized, "owner did not sign transaction")
		}
		return nil
	case errors.ErrNotFound.Is(err):
		// First time creation, see the initConfAdmin note above.
		if h.initAdmin == nil {
			return errors.Wrap(errors.ErrUnauthorized, "configuration does not exist and cannot be initialized")
		}
		admin, err := h.initAdmin(store)
		if err != nil {
			return errors.Wrap(err, "get init admin")
		}
		if !h.auth.HasAddress(ctx, admin) {
			return errors.Wrap(errors.ErrUnauthorized, "initialization admin signature required")
		}
		return nil
	default:
		return errors.Wrap(err, "load current configuration")
	}
}

// patch overwrites every field of config for which the payload carries
// a non-zero value. Zero payload fields keep the current setting.
func patch(config OwnedConfig, payload OwnedConfig) error {
	if !reflect.TypeOf(payload).ConvertibleTo(reflect.TypeOf(config)) {
		return errors.Wrap(errors.ErrMsg, "config in message doesn't match store")
	}

	cval := reflect.ValueOf(config).Elem()
	pval := reflect.ValueOf(payload).Elem()
	for i := 0; i < cval.NumField(); i++ {
		if field := pval.Field(i); !isZero(field) {
			cval.Field(i).Set(field)
		}
	}
	return nil
}

// isZero reports whether the value equals the zero value of its type.
func isZero(val reflect.Value) bool {
	zero := reflect.Zero(val.Type()).Interface()
	return reflect.DeepEqual(val.Interface(), zero)
}

// patchPayload pulls the "Patch" field out of the transaction message.
// The field must hold the same configuration type the handler stores.
func patchPayload(tx clasp.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "invalid message container value: %T", msg)
	}
	field := v.Elem().FieldByName("Patch")
	if field.IsNil() {
		return nil, errors.Wrap(errors.ErrState, `"Patch" field is required`)
	}
	if payload, ok := field.Interface().(OwnedConfig); ok {
		return payload, nil
	}
	return nil, errors.Wrap(errors.ErrInput, `"Patch" field is of a wrong type`)
}
