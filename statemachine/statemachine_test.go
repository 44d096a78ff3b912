package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/paymentflow/domain"
)

func TestValidateRequestTransition_AllowedEdges(t *testing.T) {
	cases := []struct {
		from, to domain.RequestStatus
	}{
		{domain.RequestDraft, domain.RequestDraft},
		{domain.RequestDraft, domain.RequestSubmitted},
		{domain.RequestSubmitted, domain.RequestPendingApproval},
		{domain.RequestPendingApproval, domain.RequestApproved},
		{domain.RequestPendingApproval, domain.RequestRejected},
		{domain.RequestApproved, domain.RequestPaid},
	}
	for _, c := range cases {
		assert.Nil(t, ValidateRequestTransition(c.from, c.to), "%s -> %s should be allowed", c.from, c.to)
	}
}

func TestValidateRequestTransition_ForbiddenEdges(t *testing.T) {
	cases := []struct {
		from, to domain.RequestStatus
	}{
		{domain.RequestDraft, domain.RequestPendingApproval},
		{domain.RequestDraft, domain.RequestApproved},
		{domain.RequestSubmitted, domain.RequestApproved},
		{domain.RequestRejected, domain.RequestPaid},
		{domain.RequestPaid, domain.RequestDraft},
		{domain.RequestApproved, domain.RequestRejected},
	}
	for _, c := range cases {
		err := ValidateRequestTransition(c.from, c.to)
		if assert.NotNil(t, err, "%s -> %s should be forbidden", c.from, c.to) {
			assert.Equal(t, domain.KindInvalidState, err.Kind)
		}
	}
}

func TestValidateBatchTransition(t *testing.T) {
	assert.Nil(t, ValidateBatchTransition(domain.BatchDraft, domain.BatchSubmitted))
	assert.Nil(t, ValidateBatchTransition(domain.BatchDraft, domain.BatchCancelled))
	assert.Nil(t, ValidateBatchTransition(domain.BatchSubmitted, domain.BatchProcessing))
	assert.Nil(t, ValidateBatchTransition(domain.BatchProcessing, domain.BatchCompleted))

	assert.NotNil(t, ValidateBatchTransition(domain.BatchDraft, domain.BatchProcessing))
	assert.NotNil(t, ValidateBatchTransition(domain.BatchCompleted, domain.BatchDraft))
	assert.NotNil(t, ValidateBatchTransition(domain.BatchCancelled, domain.BatchSubmitted))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsRequestTerminal(domain.RequestRejected))
	assert.True(t, IsRequestTerminal(domain.RequestPaid))
	assert.False(t, IsRequestTerminal(domain.RequestDraft))

	assert.True(t, IsBatchTerminal(domain.BatchCompleted))
	assert.True(t, IsBatchTerminal(domain.BatchCancelled))
	assert.False(t, IsBatchTerminal(domain.BatchProcessing))
}

// For any (kind, current, target) pair, the realized post-state is always
// either in the allowed successor set or the call fails with
// InvalidState — i.e. there is no third outcome.
func TestTransitionIsTotal(t *testing.T) {
	allStatuses := []domain.RequestStatus{
		domain.RequestDraft, domain.RequestSubmitted, domain.RequestPendingApproval,
		domain.RequestApproved, domain.RequestRejected, domain.RequestPaid,
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := ValidateRequestTransition(from, to)
			allowed := false
			for _, s := range requestGraph[from] {
				if s == to {
					allowed = true
				}
			}
			if allowed {
				assert.Nil(t, err)
			} else {
				assert.NotNil(t, err)
			}
		}
	}
}
