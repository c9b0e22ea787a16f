package models

import (
	"errors"
	"fmt"

	"custodian/pkg/platform/sentinel"
)

var (
	ErrScenarioNotFound       = errors.New("scenario type not recognised")
	ErrInitialAssetsMissing   = errors.New("initial assets not found")
	ErrInvalidAssetDefinition = errors.New("invalid asset definition")
	ErrTransferChainTooLong   = errors.New("owner chain exceeds transfer label sequence")
	ErrIdentityNotFound       = errors.New("identity not found")
	ErrRunInProgress          = fmt.Errorf("demo run already in progress: %w", sentinel.ErrConflict)
)
