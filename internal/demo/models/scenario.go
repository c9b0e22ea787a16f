package models

const (
	ScenarioSimple = "simple"
	ScenarioFull   = "full"
)

// IsKnownScenario reports whether key names one of the demo scenarios.
func IsKnownScenario(key string) bool {
	return key == ScenarioSimple || key == ScenarioFull
}
