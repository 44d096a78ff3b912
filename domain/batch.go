package domain

import "time"

// PaymentBatch groups PaymentRequests submitted together for approval.
// It is owned by its creator until submission; afterward its contents are
// immutable.
type PaymentBatch struct {
	ID          BatchID
	Title       string
	Status      BatchStatus
	CreatedAt   time.Time
	CreatedBy   UserID
	SubmittedAt *time.Time
	CompletedAt *time.Time
}

// Validate checks the invariants PaymentBatch must satisfy independent of
// any store-level constraint: title non-empty, submitted_at set iff status
// isn't DRAFT, completed_at set iff status is terminal.
func (b *PaymentBatch) Validate() *AppError {
	if b.Title == "" {
		return New(KindValidation, "batch title must not be empty")
	}
	if (b.SubmittedAt != nil) == (b.Status == BatchDraft) {
		return New(KindValidation, "submitted_at must be set iff status is not DRAFT")
	}
	terminal := b.Status == BatchCompleted || b.Status == BatchCancelled
	if (b.CompletedAt != nil) != terminal {
		return New(KindValidation, "completed_at must be set iff status is COMPLETED or CANCELLED")
	}
	return nil
}

func (b *PaymentBatch) IsTerminal() bool {
	return b.Status == BatchCompleted || b.Status == BatchCancelled
}

func (b *PaymentBatch) IsOwner(p Principal) bool {
	return p.Owns(b.CreatedBy)
}
