/*
Package statemachine implements a pure function over two static
transition graphs, one per entity kind. It performs no I/O and consults
nothing but its own compile-time tables, expressing the allowed
transitions as static, declarative Go data rather than procedural logic.
*/
package statemachine

import (
	"github.com/warp/paymentflow/domain"
)

// Kind identifies which entity's transition graph to consult.
type Kind string

const (
	KindPaymentRequest Kind = "PAYMENT_REQUEST"
	KindPaymentBatch   Kind = "PAYMENT_BATCH"
)

// requestGraph is the PaymentRequest transition graph.
// DRAFT -> DRAFT models an in-place re-edit that does not change status.
var requestGraph = map[domain.RequestStatus][]domain.RequestStatus{
	domain.RequestDraft:           {domain.RequestDraft, domain.RequestSubmitted},
	domain.RequestSubmitted:       {domain.RequestPendingApproval},
	domain.RequestPendingApproval: {domain.RequestApproved, domain.RequestRejected},
	domain.RequestApproved:        {domain.RequestPaid},
	domain.RequestRejected:        {}, // terminal
	domain.RequestPaid:            {}, // terminal
}

// batchGraph is the PaymentBatch transition graph.
var batchGraph = map[domain.BatchStatus][]domain.BatchStatus{
	domain.BatchDraft:      {domain.BatchSubmitted, domain.BatchCancelled},
	domain.BatchSubmitted:  {domain.BatchProcessing},
	domain.BatchProcessing: {domain.BatchCompleted},
	domain.BatchCompleted:  {}, // terminal
	domain.BatchCancelled:  {}, // terminal
}

// ValidateRequestTransition answers whether current -> target is an
// allowed PaymentRequest transition.
func ValidateRequestTransition(current, target domain.RequestStatus) *domain.AppError {
	successors, known := requestGraph[current]
	if !known {
		return domain.Newf(domain.KindInvalidState, "unknown payment request status %q", current)
	}
	for _, s := range successors {
		if s == target {
			return nil
		}
	}
	return domain.Newf(domain.KindInvalidState, "payment request cannot transition from %s to %s", current, target)
}

// ValidateBatchTransition answers whether current -> target is an allowed
// PaymentBatch transition.
func ValidateBatchTransition(current, target domain.BatchStatus) *domain.AppError {
	successors, known := batchGraph[current]
	if !known {
		return domain.Newf(domain.KindInvalidState, "unknown payment batch status %q", current)
	}
	for _, s := range successors {
		if s == target {
			return nil
		}
	}
	return domain.Newf(domain.KindInvalidState, "payment batch cannot transition from %s to %s", current, target)
}

// IsRequestTerminal reports whether status has no outgoing edges.
func IsRequestTerminal(status domain.RequestStatus) bool {
	successors, ok := requestGraph[status]
	return ok && len(successors) == 0
}

// IsBatchTerminal reports whether status has no outgoing edges.
func IsBatchTerminal(status domain.BatchStatus) bool {
	successors, ok := batchGraph[status]
	return ok && len(successors) == 0
}
