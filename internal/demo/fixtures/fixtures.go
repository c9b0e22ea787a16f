// Package fixtures loads the demo scenarios. Documents are decoded through
// yaml.Node so that attribute order follows the order of declaration, which
// fixes the sequence of attribute updates submitted to the ledger.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"custodian/internal/demo/models"
)

//go:embed scenarios.yaml
var embeddedScenarios []byte

// assetsKey is the nested collection every scenario must carry.
const assetsKey = "diamonds"

// Catalog holds the decoded scenarios. It is immutable after Parse.
type Catalog struct {
	scenarios map[string][]models.AssetDefinition
}

// Load reads the scenario document at path, or the embedded document when
// path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embeddedScenarios)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario document. JSON documents are accepted as well.
func Parse(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}

	c := &Catalog{scenarios: make(map[string][]models.AssetDefinition)}
	if len(doc.Content) == 0 {
		return c, nil
	}
	root := deref(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode scenarios: top level must be a mapping, line %d", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		defs, found, err := decodeScenario(root.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", key, err)
		}
		if found {
			c.scenarios[key] = defs
		}
	}
	return c, nil
}

// Resolve returns a copy of the asset definitions of the named scenario.
func (c *Catalog) Resolve(key string) ([]models.AssetDefinition, error) {
	if !models.IsKnownScenario(key) {
		return nil, fmt.Errorf("%w: %q", models.ErrScenarioNotFound, key)
	}
	defs, ok := c.scenarios[key]
	if !ok {
		return nil, fmt.Errorf("%w: scenario %q has no %s", models.ErrInitialAssetsMissing, key, assetsKey)
	}
	out := make([]models.AssetDefinition, len(defs))
	for i, def := range defs {
		out[i] = def.Clone()
	}
	return out, nil
}

func decodeScenario(node *yaml.Node) ([]models.AssetDefinition, bool, error) {
	node = deref(node)
	if node.Kind != yaml.MappingNode {
		return nil, false, nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != assetsKey {
			continue
		}
		seq := deref(node.Content[i+1])
		if seq.Kind != yaml.SequenceNode {
			return nil, false, fmt.Errorf("%w: %s must be a list, line %d", models.ErrInvalidAssetDefinition, assetsKey, seq.Line)
		}
		defs := make([]models.AssetDefinition, 0, len(seq.Content))
		for idx, item := range seq.Content {
			def, err := decodeDefinition(item)
			if err != nil {
				return nil, false, fmt.Errorf("%s[%d]: %w", assetsKey, idx, err)
			}
			defs = append(defs, def)
		}
		return defs, true, nil
	}
	return nil, false, nil
}

func decodeDefinition(node *yaml.Node) (models.AssetDefinition, error) {
	node = deref(node)
	if node.Kind != yaml.MappingNode {
		return models.AssetDefinition{}, fmt.Errorf("%w: expected a mapping, line %d", models.ErrInvalidAssetDefinition, node.Line)
	}

	var def models.AssetDefinition
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := deref(node.Content[i+1])

		if name == models.OwnersField {
			owners, err := decodeOwners(value)
			if err != nil {
				return models.AssetDefinition{}, err
			}
			def.Owners = owners
			continue
		}
		if value.Kind != yaml.ScalarNode {
			return models.AssetDefinition{}, fmt.Errorf("%w: attribute %q must be a scalar, line %d", models.ErrInvalidAssetDefinition, name, value.Line)
		}
		def.Fields = append(def.Fields, models.Field{Name: name, Value: scalar(value)})
	}

	switch {
	case len(def.Owners) < 2:
		return models.AssetDefinition{}, fmt.Errorf("%w: %s needs the authority and at least one owner, got %d", models.ErrInvalidAssetDefinition, models.OwnersField, len(def.Owners))
	case len(def.Owners) > models.MaxOwners:
		return models.AssetDefinition{}, fmt.Errorf("%w: %s has %d entries, at most %d supported", models.ErrInvalidAssetDefinition, models.OwnersField, len(def.Owners), models.MaxOwners)
	}
	return def, nil
}

func decodeOwners(node *yaml.Node) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %s must be a list, line %d", models.ErrInvalidAssetDefinition, models.OwnersField, node.Line)
	}
	owners := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		item = deref(item)
		if item.Kind != yaml.ScalarNode || item.Value == "" {
			return nil, fmt.Errorf("%w: owner entries must be names, line %d", models.ErrInvalidAssetDefinition, item.Line)
		}
		owners = append(owners, item.Value)
	}
	return owners, nil
}

func scalar(node *yaml.Node) string {
	if node.Tag == "!!null" {
		return ""
	}
	return node.Value
}

func deref(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
