package domain

import "time"

// ApprovalRecord is one-to-one with a PaymentRequest, created exactly once
// inside the request's approve or reject transition, and immutable after
// creation.
type ApprovalRecord struct {
	ID        ApprovalID
	RequestID RequestID
	ApproverID UserID
	Decision  ApprovalDecision
	Comment   *string
	CreatedAt time.Time
}
