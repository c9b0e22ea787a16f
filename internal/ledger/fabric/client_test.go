package fabric

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian/internal/demo/ports"
	"custodian/pkg/platform/sentinel"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Config{
		Channel:    "demochannel",
		Contract:   "diamonds",
		WalletPath: t.TempDir(),
		Authority:  "kollur",
	}, nil)
	require.NoError(t, err)
	return client
}

func TestNewRequiresChannelAndContract(t *testing.T) {
	_, err := New(Config{WalletPath: t.TempDir()}, nil)
	assert.Error(t, err)
}

func TestNewAppliesDefaults(t *testing.T) {
	client := newTestClient(t)
	assert.Equal(t, "create_asset", client.cfg.CreateFunction)
	assert.Equal(t, ".*", client.cfg.EventFilter)
}

func TestIdentityMissingFromWallet(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	t.Run("connect", func(t *testing.T) {
		err := client.Connect(ctx)
		var lerr *ports.LedgerError
		require.True(t, errors.As(err, &lerr))
		assert.Equal(t, "connect", lerr.Op)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("transfer", func(t *testing.T) {
		_, err := client.Transfer(ctx, "golconda", "surat", "distributor_to_dealership", "asset-1")
		var lerr *ports.LedgerError
		require.True(t, errors.As(err, &lerr))
		assert.Equal(t, "transfer", lerr.Op)
		assert.Contains(t, string(lerr.RawPayload()), "not in wallet")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		err := client.UpdateAttribute(ctx, "golconda", "update_colour", "D", "asset-1")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("disconnect without connection is a no-op", func(t *testing.T) {
		assert.NoError(t, client.Disconnect())
	})
}
