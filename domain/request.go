package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest is a single payment instruction inside a batch. Exactly
// one of its two shapes is populated at any time:
//
//   - Legacy: Amount, BeneficiaryName, BeneficiaryAccount, Purpose.
//   - Ledger-driven: EntityType + (VendorID xor SubcontractorID) + SiteID,
//     BaseAmount, ExtraAmount, ExtraReason (iff ExtraAmount > 0), plus
//     display-field snapshots captured at creation time.
type PaymentRequest struct {
	ID        RequestID
	BatchID   BatchID
	Status    RequestStatus
	Currency  string // ISO-4217, e.g. "USD"
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy UserID
	UpdatedBy UserID
	Version   int64 // monotonically increasing, starts at 1

	// Legacy shape.
	Amount             *decimal.Decimal
	BeneficiaryName    *string
	BeneficiaryAccount *string
	Purpose            *string

	// Ledger-driven shape.
	EntityType      *EntityType
	VendorID        *VendorID
	SubcontractorID *SubcontractorID
	SiteID          *SiteID
	BaseAmount      *decimal.Decimal
	ExtraAmount     *decimal.Decimal
	ExtraReason     *string
	TotalAmount     *decimal.Decimal

	// Snapshots of the referenced ledger entities' display fields,
	// captured at creation so later renames don't rewrite history.
	EntityDisplayName *string
	SiteCodeSnapshot  *string
}

// IsLegacyShape reports whether the request uses the free-text
// beneficiary fields.
func (r *PaymentRequest) IsLegacyShape() bool {
	return r.Amount != nil
}

// IsLedgerShape reports whether the request references a ledger entity.
func (r *PaymentRequest) IsLedgerShape() bool {
	return r.EntityType != nil
}

// ValidateShape enforces the data-model invariants governing which fields
// may be populated together. The store layer re-enforces the core ones
// with check constraints (legacy XOR ledger shape, complete legacy
// fields, vendor XOR subcontractor, amount > 0, total = base + extra);
// this is the in-process check consulted before any write is attempted,
// so a caller gets a Validation error instead of a bare constraint
// violation wherever possible.
func (r *PaymentRequest) ValidateShape() *AppError {
	legacy := r.IsLegacyShape()
	ledger := r.IsLedgerShape()

	if legacy == ledger {
		return New(KindValidation, "exactly one of legacy or ledger-driven shape must be used")
	}

	if legacy {
		if r.Amount == nil || !r.Amount.IsPositive() {
			return New(KindValidation, "amount must be > 0")
		}
		if r.BeneficiaryName == nil || *r.BeneficiaryName == "" {
			return New(KindValidation, "beneficiary_name is required")
		}
		if r.BeneficiaryAccount == nil || *r.BeneficiaryAccount == "" {
			return New(KindValidation, "beneficiary_account is required")
		}
		if r.Purpose == nil || *r.Purpose == "" {
			return New(KindValidation, "purpose is required")
		}
		if r.VendorID != nil || r.SubcontractorID != nil || r.SiteID != nil {
			return New(KindValidation, "legacy request must not carry ledger fields")
		}
	} else {
		if (r.VendorID != nil) == (r.SubcontractorID != nil) {
			return New(KindValidation, "exactly one of vendor or subcontractor must be set")
		}
		if r.SiteID == nil {
			return New(KindValidation, "site is required for ledger-driven requests")
		}
		if r.BaseAmount == nil || !r.BaseAmount.IsPositive() {
			return New(KindValidation, "base_amount must be > 0")
		}
		if r.ExtraAmount == nil || r.ExtraAmount.IsNegative() {
			return New(KindValidation, "extra_amount must be >= 0")
		}
		extraPositive := r.ExtraAmount.IsPositive()
		hasReason := r.ExtraReason != nil && *r.ExtraReason != ""
		if extraPositive != hasReason {
			return New(KindValidation, "extra_reason must be set iff extra_amount > 0")
		}
		if r.TotalAmount != nil {
			want := r.BaseAmount.Add(*r.ExtraAmount)
			if !r.TotalAmount.Equal(want) {
				return New(KindValidation, "total_amount must equal base_amount + extra_amount")
			}
		}
		if r.Amount != nil || r.BeneficiaryName != nil || r.BeneficiaryAccount != nil || r.Purpose != nil {
			return New(KindValidation, "ledger-driven request must not carry legacy fields")
		}
	}

	if !isISO4217(r.Currency) {
		return New(KindValidation, "currency must be a three-letter ISO-4217 code")
	}

	return nil
}

// ComputeTotal fills TotalAmount from BaseAmount + ExtraAmount for a
// ledger-driven request. Called by the workflow service at creation and
// update time, never trusted from caller input.
func (r *PaymentRequest) ComputeTotal() {
	if r.BaseAmount == nil || r.ExtraAmount == nil {
		return
	}
	total := r.BaseAmount.Add(*r.ExtraAmount)
	r.TotalAmount = &total
}

func isISO4217(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
