package market

// TransferStatus is the lifecycle state of a transfer listing.
type TransferStatus string

const (
	TransferStatusActive     TransferStatus = "active"
	TransferStatusProcessing TransferStatus = "processing"
	TransferStatusSold       TransferStatus = "sold"
	TransferStatusCanceled   TransferStatus = "canceled"
)

// ListingUniqueKeyActive is the value of transfer_listings.unique_key while a
// listing is active. Every other status stores NULL.
const ListingUniqueKeyActive = "active"

func AllTransferStatuses() []TransferStatus {
	return []TransferStatus{TransferStatusActive, TransferStatusProcessing, TransferStatusSold, TransferStatusCanceled}
}

// AvailableForPurchase lists the statuses a buyer may lock.
func AvailableForPurchase() []TransferStatus {
	return []TransferStatus{TransferStatusActive}
}

// InProgress lists the statuses that block a new listing for the same player.
func InProgress() []TransferStatus {
	return []TransferStatus{TransferStatusActive, TransferStatusProcessing}
}

// Completed lists terminal statuses.
func Completed() []TransferStatus {
	return []TransferStatus{TransferStatusSold, TransferStatusCanceled}
}

func (s TransferStatus) Valid() bool {
	switch s {
	case TransferStatusActive, TransferStatusProcessing, TransferStatusSold, TransferStatusCanceled:
		return true
	}
	return false
}

func (s TransferStatus) IsAvailableForPurchase() bool { return s == TransferStatusActive }

func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusSold || s == TransferStatusCanceled
}

// UniqueKey returns the unique_key column value for a listing in status s.
func (s TransferStatus) UniqueKey() *string {
	if s != TransferStatusActive {
		return nil
	}
	k := ListingUniqueKeyActive
	return &k
}

func (s TransferStatus) Label() string {
	switch s {
	case TransferStatusActive:
		return "Active"
	case TransferStatusProcessing:
		return "Processing"
	case TransferStatusSold:
		return "Sold"
	case TransferStatusCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

func (s TransferStatus) Description() string {
	switch s {
	case TransferStatusActive:
		return "Player is available for transfer"
	case TransferStatusProcessing:
		return "Transfer is being processed"
	case TransferStatusSold:
		return "Player has been sold"
	case TransferStatusCanceled:
		return "Transfer has been canceled"
	default:
		return ""
	}
}

// StatusStrings converts statuses for SQL IN clauses.
func StatusStrings(in []TransferStatus) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}
