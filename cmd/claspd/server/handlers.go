package server

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/clasp-io/clasp"
	claspapp "github.com/clasp-io/clasp/app"
	claspd "github.com/clasp-io/clasp/cmd/claspd/app"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/orm"
	"github.com/clasp-io/clasp/x/cash"
	"github.com/clasp-io/clasp/x/htlc"
	"github.com/clasp-io/clasp/x/token"
)

// maxTxSize bounds a submitted transaction body.
const maxTxSize = 1 << 20

// TxHandler accepts a transaction in its JSON form, finalizes it in a
// block and reports the result.
type TxHandler struct {
	Node *Node
}

func (h *TxHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		JSONErr(w, http.StatusMethodNotAllowed, "transactions are submitted via POST")
		return
	}
	body, err := ioutil.ReadAll(io.LimitReader(r.Body, maxTxSize))
	if err != nil {
		JSONErr(w, http.StatusBadRequest, "cannot read request body")
		return
	}
	tx, err := claspd.DecodeJSONTx(body)
	if err != nil {
		JSONErr(w, http.StatusBadRequest, err.Error())
		return
	}
	raw, err := tx.Marshal()
	if err != nil {
		log.Printf("cannot serialize transaction: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	result, err := h.Node.SubmitTx(raw)
	switch err := err.(type) {
	case nil:
		JSONResp(w, http.StatusOK, result)
	case *ABCIError:
		JSONErr(w, http.StatusConflict, err.Log)
	default:
		log.Printf("transaction submit: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// SwapsHandler lists swaps in identifier order. An optional depositor
// filter narrows the result to one account, offset continues a previous
// page.
type SwapsHandler struct {
	Node *Node
}

func (h *SwapsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset := decodeHexParam(q.Get("offset"))

	var (
		path string
		data string
	)
	if d := q.Get("depositor"); len(d) > 0 {
		rawAddr, err := clasp.ParseAddress(d)
		if err != nil {
			JSONErr(w, http.StatusBadRequest, "depositor must be a valid address value")
			return
		}
		end := nextKeyValue(rawAddr)
		path = "/swaps/depositor?range"
		data = fmt.Sprintf("%x:%x:%x", rawAddr, offset, end)
	} else {
		path = "/swaps?range"
		data = fmt.Sprintf("%x", offset)
	}

	objects, err := queryList(h.Node, path, []byte(data), func() orm.Model { return &htlc.Swap{} })
	if err != nil {
		log.Printf("swaps query: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	JSONResp(w, http.StatusOK, struct {
		Objects []KeyValue `json:"objects"`
	}{
		Objects: objects,
	})
}

// SwapDetailHandler returns a single swap by its hex identifier.
type SwapDetailHandler struct {
	Node *Node
}

func (h *SwapDetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	swapID, err := hex.DecodeString(lastChunk(r.URL.Path))
	if err != nil || len(swapID) == 0 {
		JSONErr(w, http.StatusNotFound, "swap identifier must be a hex encoded value")
		return
	}

	objects, err := queryList(h.Node, "/swaps", swapID, func() orm.Model { return &htlc.Swap{} })
	if err != nil {
		log.Printf("swap detail query: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	if len(objects) == 0 {
		JSONErr(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	}
	JSONResp(w, http.StatusOK, objects[0].Value)
}

// EventsHandler serves the append-only swap log. A relayer polls with
// after set to the last sequence number it processed.
type EventsHandler struct {
	Node *Node
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var data string
	if a := r.URL.Query().Get("after"); len(a) > 0 {
		n, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			JSONErr(w, http.StatusBadRequest, "after must be an integer sequence number")
			return
		}
		data = fmt.Sprintf("%x", encodeSequence(n+1))
	}

	objects, err := queryList(h.Node, "/swapevents?range", []byte(data), func() orm.Model { return &htlc.Event{} })
	if err != nil {
		log.Printf("swap events query: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	// The hex key doubles as the next polling cursor, decoded to the
	// sequence number it represents.
	type entry struct {
		Sequence uint64      `json:"sequence"`
		Event    interface{} `json:"event"`
	}
	events := make([]entry, 0, len(objects))
	for _, obj := range objects {
		events = append(events, entry{
			Sequence: decodeSequence(obj.Key),
			Event:    obj.Value,
		})
	}
	JSONResp(w, http.StatusOK, struct {
		Events []entry `json:"events"`
	}{
		Events: events,
	})
}

// PreviewHandler derives the identifier a lock with the given
// parameters would be stored under, without touching any state. The
// counter party can verify it before the lock confirms.
type PreviewHandler struct {
	Node *Node
}

func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	depositor, err := clasp.ParseAddress(q.Get("depositor"))
	if err != nil || depositor == nil {
		JSONErr(w, http.StatusBadRequest, "depositor must be a valid address value")
		return
	}
	secretHash, err := hex.DecodeString(q.Get("secret_hash"))
	if err != nil || len(secretHash) == 0 {
		JSONErr(w, http.StatusBadRequest, "secret_hash must be a hex encoded commitment")
		return
	}

	if !atMostOne(q, "recipient", "binding") {
		JSONErr(w, http.StatusBadRequest, "recipient and binding are exclusive")
		return
	}
	var bindingHash []byte
	if rec := q.Get("recipient"); len(rec) > 0 {
		addr, err := clasp.ParseAddress(rec)
		if err != nil {
			JSONErr(w, http.StatusBadRequest, "recipient must be a valid address value")
			return
		}
		bindingHash = htlc.BindingHash(addr)
	} else if bin := q.Get("binding"); len(bin) > 0 {
		raw, err := hex.DecodeString(bin)
		if err != nil {
			JSONErr(w, http.StatusBadRequest, "binding must be a hex encoded value")
			return
		}
		bindingHash = htlc.BindingHash(raw)
	} else {
		JSONErr(w, http.StatusBadRequest, "a recipient or a binding is required")
		return
	}

	data := make([]byte, 0, len(depositor)+len(secretHash)+len(bindingHash))
	data = append(data, depositor...)
	data = append(data, secretHash...)
	data = append(data, bindingHash...)

	resp, err := h.Node.ABCIQuery("/swapid", data)
	if err != nil {
		abciErr, ok := err.(*ABCIError)
		if ok {
			JSONErr(w, http.StatusBadRequest, abciErr.Log)
		} else {
			log.Printf("swap id query: %s", err)
			JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}
	var values claspapp.ResultSet
	if err := values.Unmarshal(resp.Value); err != nil || len(values.Results) == 0 {
		log.Printf("swap id query: cannot parse result: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	swapID := values.Results[0]

	JSONResp(w, http.StatusOK, struct {
		SwapID  hexbytes      `json:"swap_id"`
		Address clasp.Address `json:"swap_address"`
	}{
		SwapID:  swapID,
		Address: htlc.SwapAddr(swapID),
	})
}

// WalletHandler returns the native currency wallet of an account.
type WalletHandler struct {
	Node *Node
}

func (h *WalletHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	addr, err := clasp.ParseAddress(lastChunk(r.URL.Path))
	if err != nil || addr == nil {
		JSONErr(w, http.StatusNotFound, "wallet address must be a valid address value")
		return
	}

	objects, err := queryList(h.Node, "/wallets", addr, func() orm.Model { return &cash.Set{} })
	if err != nil {
		log.Printf("wallet query: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	// An account without a wallet holds nothing, which is a valid
	// answer, not a miss.
	wallet := &cash.Set{}
	if len(objects) != 0 {
		wallet = objects[0].Value.(*cash.Set)
	}
	JSONResp(w, http.StatusOK, struct {
		Address clasp.Address `json:"address"`
		Coins   coin.Coins    `json:"coins"`
	}{
		Address: addr,
		Coins:   wallet.Coins,
	})
}

// TokenBalancesHandler lists the external asset holdings of an account.
type TokenBalancesHandler struct {
	Node *Node
}

func (h *TokenBalancesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	addr, err := clasp.ParseAddress(lastChunk(r.URL.Path))
	if err != nil || addr == nil {
		JSONErr(w, http.StatusNotFound, "account address must be a valid address value")
		return
	}

	// Balance keys start with the fixed width account address, one scan
	// returns every holding.
	objects, err := queryList(h.Node, "/tokenbalances?prefix", addr, func() orm.Model { return &token.Balance{} })
	if err != nil {
		log.Printf("token balances query: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	balances := make([]*token.Balance, 0, len(objects))
	for _, obj := range objects {
		balances = append(balances, obj.Value.(*token.Balance))
	}
	JSONResp(w, http.StatusOK, struct {
		Address  clasp.Address    `json:"address"`
		Balances []*token.Balance `json:"balances"`
	}{
		Address:  addr,
		Balances: balances,
	})
}

// TokensHandler lists the token registry.
type TokensHandler struct {
	Node *Node
}

func (h *TokensHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	offset := decodeHexParam(r.URL.Query().Get("offset"))
	data := fmt.Sprintf("%x", offset)

	objects, err := queryList(h.Node, "/tokens?range", []byte(data), func() orm.Model { return &token.Token{} })
	if err != nil {
		log.Printf("tokens query: %s", err)
		JSONErr(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	// Registry keys are plain tickers, readable as text.
	type entry struct {
		Ticker string `json:"ticker"`
		Name   string `json:"name"`
	}
	tokens := make([]entry, 0, len(objects))
	for _, obj := range objects {
		tokens = append(tokens, entry{
			Ticker: string(obj.Key),
			Name:   obj.Value.(*token.Token).Name,
		})
	}
	JSONResp(w, http.StatusOK, struct {
		Tokens []entry `json:"tokens"`
	}{
		Tokens: tokens,
	})
}

// InfoHandler reports what this instance runs and how far it got.
type InfoHandler struct {
	Node *Node
}

func (h *InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	JSONResp(w, http.StatusOK, struct {
		ChainID string `json:"chain_id"`
		Height  int64  `json:"height"`
		Version string `json:"version"`
	}{
		ChainID: h.Node.ChainID(),
		Height:  h.Node.Height(),
		Version: clasp.Version,
	})
}

// DefaultHandler is used to handle the request that no other handler
// wants.
type DefaultHandler struct{}

func (h *DefaultHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// No trailing slash.
	if len(r.URL.Path) > 1 && r.URL.Path[len(r.URL.Path)-1] == '/' {
		path := strings.TrimRight(r.URL.Path, "/")
		JSONRedirect(w, http.StatusPermanentRedirect, path)
		return
	}
	JSONErr(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// queryList runs one query against the node and decodes every returned
// model with a fresh instance obtained from proto. Bucket prefixes are
// cut from the returned keys, so a key can be fed back as an offset.
func queryList(n *Node, path string, data []byte, proto func() orm.Model) ([]KeyValue, error) {
	resp, err := n.ABCIQuery(path, data)
	if err != nil {
		return nil, err
	}

	var keys, values claspapp.ResultSet
	if err := keys.Unmarshal(resp.Key); err != nil {
		return nil, errors.Wrap(err, "cannot parse keys")
	}
	if err := values.Unmarshal(resp.Value); err != nil {
		return nil, errors.Wrap(err, "cannot parse values")
	}
	models, err := claspapp.JoinResults(&keys, &values)
	if err != nil {
		return nil, err
	}

	objects := make([]KeyValue, 0, len(models))
	for _, m := range models {
		obj := proto()
		if err := obj.Unmarshal(m.Value); err != nil {
			return nil, errors.Wrapf(err, "unmarshaling %T", obj)
		}
		objects = append(objects, KeyValue{
			Key:   trimBucketPrefix(m.Key),
			Value: obj,
		})
	}
	return objects, nil
}

// trimBucketPrefix cuts the bucket name from a raw storage key. Bucket
// names never contain the separator, everything past the first one is
// the logical key.
func trimBucketPrefix(key []byte) []byte {
	for i, c := range key {
		if c == ':' {
			return key[i+1:]
		}
	}
	return key
}

// decodeHexParam reads a hex encoded query parameter, returning nil for
// missing or malformed input.
func decodeHexParam(value string) []byte {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return nil
	}
	return raw
}

// atMostOne returns true if at most one non empty value from given list
// of names exists in the query.
func atMostOne(query url.Values, names ...string) bool {
	var nonempty int
	for _, name := range names {
		if query.Get(name) != "" {
			nonempty++
		}
		if nonempty > 1 {
			return false
		}
	}
	return true
}

// lastChunk returns last path chunk - everything after the last `/`
// character. For example LAST in /foo/bar/LAST and empty string in
// /foo/bar/
func lastChunk(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func nextKeyValue(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	next := make([]byte, len(b))
	copy(next, b)

	// If the last value does not overflow, increment it. Otherwise this
	// is an edge case and key must be extended.
	if next[len(next)-1] < math.MaxUint8 {
		next[len(next)-1]++
	} else {
		next = append(next, 0)
	}
	return next
}

func encodeSequence(val uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, val)
	return bz
}

func decodeSequence(key []byte) uint64 {
	if len(key) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key)
}

// KeyValue is one query result entry.
type KeyValue struct {
	Key   hexbytes  `json:"key"`
	Value orm.Model `json:"value"`
}

// hexbytes serializes to JSON as a hex encoded string.
type hexbytes []byte

func (b hexbytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

func (b *hexbytes) UnmarshalJSON(enc []byte) error {
	var s string
	if err := json.Unmarshal(enc, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

// JSONResp writes the content as a JSON encoded response body.
func JSONResp(w http.ResponseWriter, code int, content interface{}) {
	raw, err := json.MarshalIndent(content, "", "\t")
	if err != nil {
		log.Printf("cannot JSON serialize response: %s", err)
		code = http.StatusInternalServerError
		raw = []byte(`{"errors":["Internal Server Error"]}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_, _ = w.Write(raw)
}

// JSONErr writes a single error message in the response error list.
func JSONErr(w http.ResponseWriter, code int, errText string) {
	JSONResp(w, code, struct {
		Errors []string `json:"errors"`
	}{
		Errors: []string{errText},
	})
}

// JSONRedirect writes a redirect response with a JSON formatted body.
func JSONRedirect(w http.ResponseWriter, code int, urlStr string) {
	w.Header().Set("Location", urlStr)
	JSONResp(w, code, struct {
		Code     int    `json:"code"`
		Location string `json:"location"`
	}{
		Code:     code,
		Location: urlStr,
	})
}
