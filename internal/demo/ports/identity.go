package ports

//go:generate mockgen -source=identity.go -destination=mocks/identity_mock.go -package=mocks

import "custodian/internal/demo/models"

// IdentityResolver maps a human-readable owner name to its ledger identity.
type IdentityResolver interface {
	Resolve(name string) (models.Identity, error)
}
