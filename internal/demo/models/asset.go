package models

import "slices"

// AssetID is the identifier the ledger assigns to a created asset.
type AssetID string

// Identity is a ledger identity resolved from a human-readable owner name.
type Identity string

// OwnersField is the distinguished attribute holding the owner chain. It is
// never submitted as an attribute update.
const OwnersField = "Owners"

// Field is one descriptive attribute of an asset definition.
type Field struct {
	Name  string
	Value string
}

// AssetDefinition describes one asset of a scenario. Fields keep the order in
// which they were declared in the fixture. Owners[0] is the originating
// authority, Owners[1:] are the successive custody holders.
type AssetDefinition struct {
	Fields []Field
	Owners []string
}

// Clone returns a deep copy.
func (d AssetDefinition) Clone() AssetDefinition {
	return AssetDefinition{
		Fields: slices.Clone(d.Fields),
		Owners: slices.Clone(d.Owners),
	}
}

// FirstOwner is the first real owner, the holder after the authority hands over.
func (d AssetDefinition) FirstOwner() string {
	if len(d.Owners) < 2 {
		return ""
	}
	return d.Owners[1]
}

// TransferCount is the number of ledger transfers the asset goes through:
// one initial assignment plus one per chain hop.
func (d AssetDefinition) TransferCount() int {
	if len(d.Owners) < 2 {
		return 0
	}
	return len(d.Owners) - 1
}

// AssetRecord binds a definition to its ledger asset ID for the duration of a run.
type AssetRecord struct {
	ID         AssetID
	Definition AssetDefinition
	Holder     string
	Attributes []Field
	Transfers  []TransferResult
}
