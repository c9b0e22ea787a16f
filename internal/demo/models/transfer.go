package models

import "fmt"

// TransferTypes are the transfer labels in hop order. Index 0 labels the
// authority-to-first-owner assignment; chain hop k uses index k+1.
var TransferTypes = []string{
	"miner_to_distributor",
	"distributor_to_dealership",
	"dealership_to_buyer",
	"buyer_to_trader",
	"trader_to_cutter",
	"cutter_to_jewellery_maker",
	"jewellery_maker_to_customer",
}

// MaxOwners is the longest owner chain (authority included) the label
// sequence can carry.
var MaxOwners = len(TransferTypes) + 1

// TransferLabel returns the label for the given zero-based label index.
func TransferLabel(index int) (string, error) {
	if index < 0 || index >= len(TransferTypes) {
		return "", fmt.Errorf("%w: label index %d, %d labels defined", ErrTransferChainTooLong, index, len(TransferTypes))
	}
	return TransferTypes[index], nil
}

// IsTransferLabel reports whether label is one of TransferTypes.
func IsTransferLabel(label string) bool {
	for _, t := range TransferTypes {
		if t == label {
			return true
		}
	}
	return false
}

// TransferResult is the ledger acknowledgment of one ownership hop.
type TransferResult struct {
	AssetID AssetID  `json:"asset_id"`
	Seller  Identity `json:"seller"`
	Buyer   Identity `json:"buyer"`
	Label   string   `json:"label"`
	TxID    string   `json:"tx_id,omitempty"`
}
