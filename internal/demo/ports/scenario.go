package ports

import "custodian/internal/demo/models"

// ScenarioSource resolves a scenario key to its ordered asset definitions.
// It returns models.ErrScenarioNotFound for unknown keys and
// models.ErrInitialAssetsMissing when the fixture has no asset collection.
type ScenarioSource interface {
	Resolve(key string) ([]models.AssetDefinition, error)
}
