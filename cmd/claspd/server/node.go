package server

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"sync"
	"time"

	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/clasp-io/clasp/errors"
)

// Node drives an embedded application through the abci block
// lifecycle, standing in for the consensus engine. Every accepted
// transaction is finalized in a block of its own, so a successful
// submission means the state change is committed and durable.
//
// The lock serializes the whole lifecycle. Queries take it too, the
// underlying tree must not be read during a commit.
type Node struct {
	mu      sync.Mutex
	app     abci.Application
	logger  log.Logger
	chainID string
	height  int64
}

// NewNode wraps an application loaded from its database.
func NewNode(application abci.Application, logger log.Logger) *Node {
	info := application.Info(abci.RequestInfo{})
	return &Node{
		app:    application,
		logger: logger,
		height: info.LastBlockHeight,
	}
}

// ChainID returns the chain this node works on. Empty until InitChain
// ran.
func (n *Node) ChainID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chainID
}

// Height returns the last committed height.
func (n *Node) Height() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.height
}

// InitChain feeds the genesis file into the application unless the
// database holds committed state already. Restarts are a noop beside
// reading the chain id back.
func (n *Node) InitChain(genFile string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	raw, err := ioutil.ReadFile(genFile)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot read genesis: %s", err)
	}
	var doc struct {
		ChainID  string          `json:"chain_id"`
		AppState json.RawMessage `json:"app_state"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse genesis: %s", err)
	}
	n.chainID = doc.ChainID

	if n.height > 0 {
		n.logger.Info("Resuming from existing state",
			"height", n.height, "chain_id", n.chainID)
		return nil
	}

	n.app.InitChain(abci.RequestInitChain{
		Time:          time.Now().UTC(),
		ChainId:       doc.ChainID,
		AppStateBytes: doc.AppState,
	})
	n.app.Commit()
	n.height = 1
	n.logger.Info("Initialized chain", "chain_id", n.chainID)
	return nil
}

// SubmitTx checks the transaction and, once accepted, finalizes it in
// its own block. A non nil error means no state was changed.
func (n *Node) SubmitTx(raw []byte) (*TxResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Open the block first so the check runs under the exact context
	// the delivery would, block time included.
	height := n.height + 1
	n.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{
		ChainID: n.chainID,
		Height:  height,
		Time:    time.Now().UTC(),
	}})

	// A rejected transaction abandons the block, nothing was written.
	if res := n.app.CheckTx(raw); res.Code != 0 {
		return nil, &ABCIError{Code: res.Code, Log: res.Log}
	}

	res := n.app.DeliverTx(raw)
	n.app.EndBlock(abci.RequestEndBlock{Height: height})
	n.app.Commit()
	n.height = height

	// A failed delivery still burns a block, its writes were rolled
	// back before the commit.
	if res.Code != 0 {
		return nil, &ABCIError{Code: res.Code, Log: res.Log}
	}

	out := &TxResult{
		Height: height,
		Data:   res.Data,
	}
	for _, tag := range res.Tags {
		out.Tags = append(out.Tags, Tag{Key: string(tag.Key), Value: string(tag.Value)})
	}
	return out, nil
}

// ABCIQuery reads committed state through the application query
// router.
func (n *Node) ABCIQuery(path string, data []byte) (abci.ResponseQuery, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	resp := n.app.Query(abci.RequestQuery{Path: path, Data: data})
	if resp.Code != 0 {
		return resp, &ABCIError{Code: resp.Code, Log: resp.Log}
	}
	return resp, nil
}

// TxResult reports where a transaction was finalized and what it
// returned.
type TxResult struct {
	Height int64    `json:"height"`
	Data   hexbytes `json:"data,omitempty"`
	Tags   []Tag    `json:"tags,omitempty"`
}

// Tag is one indexing entry of a delivered transaction.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ABCIError is a rejection reported by the application, carrying its
// error code.
type ABCIError struct {
	Code uint32
	Log  string
}

func (e *ABCIError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Log)
}
