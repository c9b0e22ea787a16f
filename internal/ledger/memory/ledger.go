// Package memory is an in-process ledger for local demo runs and tests. It
// enforces the rules the demo relies on: only the current owner may transfer
// or update an asset, transfer labels must be known, and nothing is accepted
// while the event stream is disconnected.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"custodian/internal/demo/models"
	"custodian/internal/demo/ports"
)

const attributePrefix = "update_"

// Error codes carried in the JSON payload of rejected submissions.
const (
	CodeDisconnected  = "EVENT_STREAM_DISCONNECTED"
	CodeAssetNotFound = "ASSET_NOT_FOUND"
	CodeNotOwner      = "NOT_OWNER"
	CodeUnknownLabel  = "UNKNOWN_TRANSFER_TYPE"
	CodeBadOperation  = "UNKNOWN_OPERATION"
	CodeRejected      = "REJECTED"
)

// Operation describes a submission, passed to the failure hook.
type Operation struct {
	Kind    string // "create", "transfer", "update"
	Caller  models.Identity
	Target  models.Identity
	Name    string
	Value   string
	AssetID models.AssetID
}

// Transfer is one entry of an asset's custody history.
type Transfer struct {
	Seller models.Identity
	Buyer  models.Identity
	Label  string
	TxID   string
}

// Asset is a snapshot of ledger state for one asset.
type Asset struct {
	ID         models.AssetID
	Author     models.Identity
	Owner      models.Identity
	Attributes map[string]string
	History    []Transfer
}

// Ledger implements ports.Ledger and ports.EventStream.
type Ledger struct {
	mu          sync.Mutex
	connected   bool
	connects    int
	disconnects int
	assetSeq    int
	txSeq       int
	assets      map[models.AssetID]*Asset
	submissions []Operation
	failHook    func(Operation) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithFailureHook lets tests reject chosen submissions. A non-nil return
// fails the submission without changing state.
func WithFailureHook(hook func(Operation) error) Option {
	return func(l *Ledger) {
		l.failHook = hook
	}
}

func New(opts ...Option) *Ledger {
	l := &Ledger{assets: make(map[models.AssetID]*Asset)}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func (l *Ledger) Connect(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = true
	l.connects++
	return nil
}

func (l *Ledger) Disconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = false
	l.disconnects++
	return nil
}

func (l *Ledger) Create(_ context.Context, author models.Identity) (models.AssetID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	op := Operation{Kind: "create", Caller: author}
	if err := l.admit(op); err != nil {
		return "", err
	}
	l.assetSeq++
	id := models.AssetID(fmt.Sprintf("asset-%04d", l.assetSeq))
	l.assets[id] = &Asset{
		ID:         id,
		Author:     author,
		Owner:      author,
		Attributes: make(map[string]string),
	}
	return id, nil
}

func (l *Ledger) Transfer(_ context.Context, seller, buyer models.Identity, label string, assetID models.AssetID) (models.TransferResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	op := Operation{Kind: "transfer", Caller: seller, Target: buyer, Name: label, AssetID: assetID}
	if err := l.admit(op); err != nil {
		return models.TransferResult{}, err
	}
	if !models.IsTransferLabel(label) {
		return models.TransferResult{}, reject(op, CodeUnknownLabel, fmt.Sprintf("unknown transfer type %q", label))
	}
	asset, err := l.owned(op)
	if err != nil {
		return models.TransferResult{}, err
	}

	l.txSeq++
	txID := fmt.Sprintf("tx-%06d", l.txSeq)
	asset.Owner = buyer
	asset.History = append(asset.History, Transfer{Seller: seller, Buyer: buyer, Label: label, TxID: txID})
	return models.TransferResult{AssetID: assetID, Seller: seller, Buyer: buyer, Label: label, TxID: txID}, nil
}

func (l *Ledger) UpdateAttribute(_ context.Context, owner models.Identity, operation, value string, assetID models.AssetID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	op := Operation{Kind: "update", Caller: owner, Name: operation, Value: value, AssetID: assetID}
	if err := l.admit(op); err != nil {
		return err
	}
	name, ok := strings.CutPrefix(operation, attributePrefix)
	if !ok || name == "" {
		return reject(op, CodeBadOperation, fmt.Sprintf("unknown operation %q", operation))
	}
	asset, err := l.owned(op)
	if err != nil {
		return err
	}
	asset.Attributes[name] = value
	return nil
}

// Asset returns a snapshot of the asset.
func (l *Ledger) Asset(id models.AssetID) (Asset, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	asset, ok := l.assets[id]
	if !ok {
		return Asset{}, false
	}
	return Asset{
		ID:         asset.ID,
		Author:     asset.Author,
		Owner:      asset.Owner,
		Attributes: maps.Clone(asset.Attributes),
		History:    slices.Clone(asset.History),
	}, true
}

// Submissions returns every submission attempted, accepted or not, in order.
func (l *Ledger) Submissions() []Operation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.submissions)
}

// Connections returns how many times the event stream was opened and closed.
func (l *Ledger) Connections() (connects, disconnects int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connects, l.disconnects
}

// admit records the submission and applies the stream and hook checks.
func (l *Ledger) admit(op Operation) error {
	l.submissions = append(l.submissions, op)
	if !l.connected {
		return reject(op, CodeDisconnected, "event stream is not connected")
	}
	if l.failHook == nil {
		return nil
	}
	if err := l.failHook(op); err != nil {
		var lerr *ports.LedgerError
		if errors.As(err, &lerr) {
			return lerr
		}
		return reject(op, CodeRejected, err.Error())
	}
	return nil
}

// owned returns the asset when op.Caller is its current owner.
func (l *Ledger) owned(op Operation) (*Asset, error) {
	asset, ok := l.assets[op.AssetID]
	if !ok {
		return nil, reject(op, CodeAssetNotFound, fmt.Sprintf("asset %s does not exist", op.AssetID))
	}
	if asset.Owner != op.Caller {
		return nil, reject(op, CodeNotOwner, fmt.Sprintf("%s is not the owner of %s", op.Caller, op.AssetID))
	}
	return asset, nil
}

func reject(op Operation, code, message string) *ports.LedgerError {
	payload, err := json.Marshal(struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   bool   `json:"error"`
	}{Code: code, Message: message, Error: true})
	if err != nil {
		payload = nil
	}
	return &ports.LedgerError{
		Op:      op.Kind,
		AssetID: op.AssetID,
		Payload: payload,
		Err:     errors.New(message),
	}
}
