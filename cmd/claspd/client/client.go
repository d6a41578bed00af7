// Package client provides programmatic access to the JSON API of a
// claspd instance. A relayer watching two ledgers talks to each of
// them through this package.
package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/clasp-io/clasp"
	claspd "github.com/clasp-io/clasp/cmd/claspd/app"
	"github.com/clasp-io/clasp/coin"
	"github.com/clasp-io/clasp/errors"
	"github.com/clasp-io/clasp/x/htlc"
	"github.com/clasp-io/clasp/x/token"
)

// Client is using HTTP transport to communicate with a claspd
// instance.
type Client struct {
	apiURL string
	cli    http.Client
}

// NewClient returns a client that sends all requests to the given
// address.
func NewClient(apiURL string) *Client {
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
	}
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequest("GET", c.apiURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "create http request")
	}
	req = req.WithContext(ctx)

	resp, err := c.cli.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return responseError(resp)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1e6)).Decode(dest); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// responseError converts a failed API response into an error carrying
// the first message of the returned errors list.
func responseError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	var payload struct {
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1e5)).Decode(&payload); err == nil && len(payload.Errors) != 0 {
		msg = payload.Errors[0]
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.Wrap(errors.ErrNotFound, msg)
	case http.StatusConflict:
		return errors.Wrap(errors.ErrState, msg)
	case http.StatusBadRequest:
		return errors.Wrap(errors.ErrInput, msg)
	default:
		return errors.Wrapf(errors.ErrDatabase, "bad response: %d %s", resp.StatusCode, msg)
	}
}

// Info reports which chain this instance runs and how far it got.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.get(ctx, "/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SubmitTx sends a transaction and waits until it is finalized in a
// block. A transaction the node refuses returns an ErrState wrapped
// rejection reason.
func (c *Client) SubmitTx(ctx context.Context, tx *claspd.Tx) (*TxResult, error) {
	raw, err := claspd.EncodeJSONTx(tx)
	if err != nil {
		return nil, errors.Wrap(err, "encode transaction")
	}
	req, err := http.NewRequest("POST", c.apiURL+"/tx", bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "create http request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, responseError(resp)
	}
	var result TxResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1e6)).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return &result, nil
}

// Lock submits a funded commitment on behalf of the caller. The result
// data is the identifier the swap was stored under.
func (c *Client) Lock(ctx context.Context, caller clasp.Condition, msg *htlc.LockMsg) (*TxResult, error) {
	return c.SubmitTx(ctx, &claspd.Tx{Msg: msg, Caller: caller})
}

// Claim reveals a secret to pay a swap out to its counter party.
func (c *Client) Claim(ctx context.Context, caller clasp.Condition, msg *htlc.ClaimMsg) (*TxResult, error) {
	return c.SubmitTx(ctx, &claspd.Tx{Msg: msg, Caller: caller})
}

// Refund returns the funds of an expired swap to its depositor.
func (c *Client) Refund(ctx context.Context, caller clasp.Condition, msg *htlc.RefundMsg) (*TxResult, error) {
	return c.SubmitTx(ctx, &claspd.Tx{Msg: msg, Caller: caller})
}

// Swap returns the state of a single swap.
func (c *Client) Swap(ctx context.Context, swapID []byte) (*htlc.Swap, error) {
	var swap htlc.Swap
	if err := c.get(ctx, "/swaps/"+hex.EncodeToString(swapID), &swap); err != nil {
		return nil, err
	}
	return &swap, nil
}

// Swaps lists swaps in identifier order. A non nil depositor narrows
// the result to swaps funded by that account. A non empty offset
// starts the listing at that identifier.
func (c *Client) Swaps(ctx context.Context, depositor clasp.Address, offset []byte) ([]SwapState, error) {
	v := make(url.Values)
	if depositor != nil {
		v.Add("depositor", depositor.String())
	}
	if len(offset) != 0 {
		v.Add("offset", hex.EncodeToString(offset))
	}
	path := "/swaps"
	if len(v) != 0 {
		path += "?" + v.Encode()
	}
	var payload struct {
		Objects []SwapState `json:"objects"`
	}
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Objects, nil
}

// Events returns the swap log entries with a sequence number greater
// than after. Polling with the last processed sequence number returns
// only what happened since.
func (c *Client) Events(ctx context.Context, after uint64) ([]SwapEvent, error) {
	path := "/events"
	if after > 0 {
		path = fmt.Sprintf("/events?after=%d", after)
	}
	var payload struct {
		Events []SwapEvent `json:"events"`
	}
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Events, nil
}

// PreviewSwapID derives the identifier and escrow address that a lock
// with the given parameters would produce, without submitting
// anything. Exactly one of recipient and binding describes the counter
// party.
func (c *Client) PreviewSwapID(ctx context.Context, depositor clasp.Address, secretHash []byte, recipient clasp.Address, binding []byte) (*SwapPreview, error) {
	if (recipient == nil) == (len(binding) == 0) {
		return nil, errors.Wrap(errors.ErrInput, "exactly one of recipient and binding is expected")
	}
	v := make(url.Values)
	v.Add("depositor", depositor.String())
	v.Add("secret_hash", hex.EncodeToString(secretHash))
	if recipient != nil {
		v.Add("recipient", recipient.String())
	} else {
		v.Add("binding", hex.EncodeToString(binding))
	}
	var preview SwapPreview
	if err := c.get(ctx, "/preview?"+v.Encode(), &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// Wallet returns the native currency funds of an account. An account
// that never received funds holds an empty wallet.
func (c *Client) Wallet(ctx context.Context, addr clasp.Address) (coin.Coins, error) {
	var payload struct {
		Coins coin.Coins `json:"coins"`
	}
	if err := c.get(ctx, "/wallets/"+addr.String(), &payload); err != nil {
		return nil, err
	}
	return payload.Coins, nil
}

// TokenBalances returns the external asset holdings of an account.
func (c *Client) TokenBalances(ctx context.Context, addr clasp.Address) ([]*token.Balance, error) {
	var payload struct {
		Balances []*token.Balance `json:"balances"`
	}
	if err := c.get(ctx, "/balances/"+addr.String(), &payload); err != nil {
		return nil, err
	}
	return payload.Balances, nil
}

// Tokens lists the registered external assets.
func (c *Client) Tokens(ctx context.Context) ([]TokenInfo, error) {
	var payload struct {
		Tokens []TokenInfo `json:"tokens"`
	}
	if err := c.get(ctx, "/tokens", &payload); err != nil {
		return nil, err
	}
	return payload.Tokens, nil
}

// Info describes a claspd instance.
type Info struct {
	ChainID string `json:"chain_id"`
	Height  int64  `json:"height"`
	Version string `json:"version"`
}

// TxResult reports where a transaction was finalized and what it
// returned.
type TxResult struct {
	Height int64    `json:"height"`
	Data   HexBytes `json:"data,omitempty"`
	Tags   []Tag    `json:"tags,omitempty"`
}

// Tag is a single indexed transaction attribute.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SwapState is a single swap together with the identifier it is
// stored under.
type SwapState struct {
	ID   HexBytes  `json:"key"`
	Swap htlc.Swap `json:"value"`
}

// SwapEvent is one entry of the append only swap log.
type SwapEvent struct {
	Sequence uint64     `json:"sequence"`
	Event    htlc.Event `json:"event"`
}

// SwapPreview is the derived identity of a swap that was not yet
// submitted.
type SwapPreview struct {
	SwapID  HexBytes      `json:"swap_id"`
	Address clasp.Address `json:"swap_address"`
}

// TokenInfo is a single token registry entry.
type TokenInfo struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// HexBytes is a byte slice that JSON serializes to a hex encoded
// string, matching the API representation of identifiers.
type HexBytes []byte

func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b))
}

func (b *HexBytes) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	val, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*b = val
	return nil
}
