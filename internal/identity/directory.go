// Package identity maps human-readable owner names to ledger identities.
package identity

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"custodian/internal/demo/models"
)

//go:embed identities.yaml
var embeddedIdentities []byte

// Directory is a static name -> identity table.
type Directory struct {
	ids map[string]models.Identity
}

// Load reads the identity table at path, or the embedded table when path is empty.
func Load(path string) (*Directory, error) {
	if path == "" {
		return Parse(embeddedIdentities)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read identities: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML mapping of owner names to identities.
func Parse(data []byte) (*Directory, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode identities: %w", err)
	}
	ids := make(map[string]models.Identity, len(raw))
	for name, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("decode identities: %q has an empty identity", name)
		}
		ids[name] = models.Identity(id)
	}
	return &Directory{ids: ids}, nil
}

// Resolve returns the ledger identity for name.
func (d *Directory) Resolve(name string) (models.Identity, error) {
	if id, ok := d.ids[name]; ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: %q", models.ErrIdentityNotFound, name)
}

// Len returns the number of known identities.
func (d *Directory) Len() int {
	return len(d.ids)
}
