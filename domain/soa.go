package domain

import "time"

// SOAVersion is one monotonically numbered attachment version of a
// PaymentRequest's Statement of Account. Version numbers are unique per
// request, gap-free, and strictly increasing.
type SOAVersion struct {
	ID            SOAVersionID
	RequestID     RequestID
	VersionNumber int
	DocumentRef   string // opaque storage handle
	Source        SOASource
	UploadedAt    time.Time
	UploadedBy    UserID
}
