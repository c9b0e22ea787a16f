package ports

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerError(t *testing.T) {
	cause := errors.New("endorsement failed")

	t.Run("raw payload is returned verbatim", func(t *testing.T) {
		lerr := &LedgerError{Op: "transfer", AssetID: "asset-1", Payload: json.RawMessage(`{"code":"E1"}`), Err: cause}
		assert.JSONEq(t, `{"code":"E1"}`, string(lerr.RawPayload()))
		assert.Equal(t, "ledger transfer asset-1: endorsement failed", lerr.Error())
		assert.ErrorIs(t, lerr, cause)
	})

	t.Run("missing payload falls back to error message", func(t *testing.T) {
		lerr := &LedgerError{Op: "create", Err: cause}
		assert.JSONEq(t, `{"message":"endorsement failed","error":true}`, string(lerr.RawPayload()))
		assert.Equal(t, "ledger create: endorsement failed", lerr.Error())
	})

	t.Run("invalid payload is replaced", func(t *testing.T) {
		lerr := &LedgerError{Op: "create", Payload: json.RawMessage("not json")}
		assert.JSONEq(t, `{"message":"create","error":true}`, string(lerr.RawPayload()))
	})
}
