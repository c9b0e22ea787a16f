package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferLabel(t *testing.T) {
	t.Run("indexes follow hop order", func(t *testing.T) {
		label, err := TransferLabel(0)
		require.NoError(t, err)
		assert.Equal(t, "miner_to_distributor", label)

		label, err = TransferLabel(6)
		require.NoError(t, err)
		assert.Equal(t, "jewellery_maker_to_customer", label)
	})

	t.Run("index past the sequence is a configuration error", func(t *testing.T) {
		_, err := TransferLabel(len(TransferTypes))
		assert.ErrorIs(t, err, ErrTransferChainTooLong)

		_, err = TransferLabel(-1)
		assert.ErrorIs(t, err, ErrTransferChainTooLong)
	})

	t.Run("max owners covers authority plus one owner per label", func(t *testing.T) {
		assert.Equal(t, 8, MaxOwners)
		assert.True(t, IsTransferLabel("trader_to_cutter"))
		assert.False(t, IsTransferLabel("authority_to_distributor"))
	})
}

func TestAssetDefinition(t *testing.T) {
	def := AssetDefinition{
		Fields: []Field{{Name: "Colour", Value: "D"}},
		Owners: []string{"Kollur", "A", "B", "C"},
	}

	assert.Equal(t, "A", def.FirstOwner())
	assert.Equal(t, 3, def.TransferCount())

	clone := def.Clone()
	clone.Owners[1] = "Z"
	clone.Fields[0].Value = "E"
	assert.Equal(t, "A", def.Owners[1])
	assert.Equal(t, "D", def.Fields[0].Value)

	assert.Equal(t, 0, AssetDefinition{Owners: []string{"Kollur"}}.TransferCount())
	assert.Empty(t, AssetDefinition{}.FirstOwner())
}
