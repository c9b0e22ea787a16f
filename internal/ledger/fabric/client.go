// Package fabric submits demo transactions to a Hyperledger Fabric network
// through the Fabric gateway. Each ledger identity is a wallet label and gets
// its own gateway connection, opened on first use, so that transactions are
// signed by the owner that submits them.
package fabric

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hyperledger/fabric-sdk-go/pkg/common/providers/fab"
	"github.com/hyperledger/fabric-sdk-go/pkg/core/config"
	"github.com/hyperledger/fabric-sdk-go/pkg/gateway"

	"custodian/internal/demo/models"
	"custodian/internal/demo/ports"
	"custodian/pkg/platform/sentinel"
)

// Config selects the network, chaincode and wallet.
type Config struct {
	ConfigPath     string
	Channel        string
	Contract       string
	WalletPath     string
	EventFilter    string
	CreateFunction string
	// Authority is the identity whose gateway carries the event listener.
	Authority models.Identity
}

type connection struct {
	gw       *gateway.Gateway
	contract *gateway.Contract
}

// Client implements ports.Ledger and ports.EventStream.
type Client struct {
	cfg    Config
	wallet *gateway.Wallet
	logger *slog.Logger

	mu    sync.Mutex
	conns map[models.Identity]*connection
	reg   fab.Registration
	done  chan struct{}
}

// New opens the wallet. No network connection is made until first use.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.Channel == "" || cfg.Contract == "" {
		return nil, fmt.Errorf("fabric channel and contract are required")
	}
	if cfg.CreateFunction == "" {
		cfg.CreateFunction = "create_asset"
	}
	if cfg.EventFilter == "" {
		cfg.EventFilter = ".*"
	}
	wallet, err := gateway.NewFileSystemWallet(filepath.Clean(cfg.WalletPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		wallet: wallet,
		logger: logger,
		conns:  make(map[models.Identity]*connection),
	}, nil
}

// Connect registers a chaincode event listener on the authority's gateway and
// logs commit events until Disconnect.
func (c *Client) Connect(_ context.Context) error {
	conn, err := c.connection(c.cfg.Authority)
	if err != nil {
		return &ports.LedgerError{Op: "connect", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reg != nil {
		return nil
	}
	reg, events, err := conn.contract.RegisterEvent(c.cfg.EventFilter)
	if err != nil {
		return &ports.LedgerError{Op: "connect", Err: fmt.Errorf("register chaincode events: %w", err)}
	}
	c.reg = reg
	c.done = make(chan struct{})
	go c.drain(events, c.done)
	return nil
}

// Disconnect unregisters the listener and closes every gateway.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reg != nil {
		if conn, ok := c.conns[c.cfg.Authority]; ok {
			conn.contract.Unregister(c.reg)
		}
		close(c.done)
		c.reg = nil
		c.done = nil
	}
	for id, conn := range c.conns {
		conn.gw.Close()
		delete(c.conns, id)
	}
	return nil
}

func (c *Client) Create(_ context.Context, author models.Identity) (models.AssetID, error) {
	payload, err := c.submit(author, c.cfg.CreateFunction)
	if err != nil {
		return "", ledgerError("create", "", err)
	}
	id := strings.TrimSpace(string(payload))
	if id == "" {
		return "", ledgerError("create", "", fmt.Errorf("%s returned no asset id", c.cfg.CreateFunction))
	}
	return models.AssetID(id), nil
}

func (c *Client) Transfer(_ context.Context, seller, buyer models.Identity, label string, assetID models.AssetID) (models.TransferResult, error) {
	payload, err := c.submit(seller, label, string(assetID), string(buyer))
	if err != nil {
		return models.TransferResult{}, ledgerError("transfer", assetID, err)
	}
	return models.TransferResult{
		AssetID: assetID,
		Seller:  seller,
		Buyer:   buyer,
		Label:   label,
		TxID:    strings.TrimSpace(string(payload)),
	}, nil
}

func (c *Client) UpdateAttribute(_ context.Context, owner models.Identity, operation, value string, assetID models.AssetID) error {
	if _, err := c.submit(owner, operation, string(assetID), value); err != nil {
		return ledgerError("update", assetID, err)
	}
	return nil
}

func (c *Client) submit(id models.Identity, function string, args ...string) ([]byte, error) {
	conn, err := c.connection(id)
	if err != nil {
		return nil, err
	}
	return conn.contract.SubmitTransaction(function, args...)
}

// connection returns the gateway for id, connecting on first use.
func (c *Client) connection(id models.Identity) (*connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if conn, ok := c.conns[id]; ok {
		return conn, nil
	}
	label := string(id)
	if !c.wallet.Exists(label) {
		return nil, fmt.Errorf("%w: identity %q not in wallet", sentinel.ErrNotFound, label)
	}

	gw, err := gateway.Connect(
		gateway.WithConfig(config.FromFile(filepath.Clean(c.cfg.ConfigPath))),
		gateway.WithIdentity(c.wallet, label),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to gateway as %q: %v", sentinel.ErrUnavailable, label, err)
	}
	network, err := gw.GetNetwork(c.cfg.Channel)
	if err != nil {
		gw.Close()
		return nil, fmt.Errorf("%w: failed to get network %q: %v", sentinel.ErrUnavailable, c.cfg.Channel, err)
	}

	conn := &connection{gw: gw, contract: network.GetContract(c.cfg.Contract)}
	c.conns[id] = conn
	return conn, nil
}

func (c *Client) drain(events <-chan *fab.CCEvent, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.logger.Debug("chaincode event",
				"event", event.EventName,
				"tx_id", event.TxID,
				"block", event.BlockNumber,
			)
		}
	}
}

// ledgerError wraps a gateway failure. Fabric reports errors as text, so the
// payload carries the message.
func ledgerError(op string, assetID models.AssetID, err error) *ports.LedgerError {
	payload, mErr := json.Marshal(struct {
		Message string `json:"message"`
		Error   bool   `json:"error"`
	}{Message: err.Error(), Error: true})
	if mErr != nil {
		payload = nil
	}
	return &ports.LedgerError{Op: op, AssetID: assetID, Payload: payload, Err: err}
}
