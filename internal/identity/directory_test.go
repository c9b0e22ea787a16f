package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodian/internal/demo/fixtures"
	"custodian/internal/demo/models"
)

func TestResolve(t *testing.T) {
	dir, err := Load("")
	require.NoError(t, err)

	id, err := dir.Resolve("Kollur")
	require.NoError(t, err)
	assert.Equal(t, models.Identity("kollur"), id)

	_, err = dir.Resolve("Nobody")
	assert.ErrorIs(t, err, models.ErrIdentityNotFound)
}

func TestEmbeddedDirectoryCoversScenarios(t *testing.T) {
	dir, err := Load("")
	require.NoError(t, err)
	catalog, err := fixtures.Load("")
	require.NoError(t, err)

	for _, key := range []string{models.ScenarioSimple, models.ScenarioFull} {
		defs, err := catalog.Resolve(key)
		require.NoError(t, err)
		for _, def := range defs {
			for _, owner := range def.Owners {
				_, err := dir.Resolve(owner)
				assert.NoError(t, err, "scenario %s owner %s", key, owner)
			}
		}
	}
}

func TestParse(t *testing.T) {
	t.Run("empty identity rejected", func(t *testing.T) {
		_, err := Parse([]byte("Kollur: \"\"\n"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml rejected", func(t *testing.T) {
		_, err := Parse([]byte("- not a mapping\n"))
		assert.Error(t, err)
	})

	t.Run("values are trimmed", func(t *testing.T) {
		dir, err := Parse([]byte("A: \" alpha \"\n"))
		require.NoError(t, err)
		id, err := dir.Resolve("A")
		require.NoError(t, err)
		assert.Equal(t, models.Identity("alpha"), id)
		assert.Equal(t, 1, dir.Len())
	})
}
