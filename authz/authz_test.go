package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/paymentflow/domain"
)

func TestAuthorize_RoleMatrix(t *testing.T) {
	owner := domain.NewUserID()
	other := domain.NewUserID()

	// Every role/capability pair not explicitly allowed must be rejected
	// before any store write — this test exercises every such pair.
	forbidden := []struct {
		role domain.Role
		cap  Capability
	}{
		{domain.RoleViewer, CapCreateBatch},
		{domain.RoleApprover, CapCreateBatch},
		{domain.RoleViewer, CapMutateBatchOwned},
		{domain.RoleApprover, CapMutateBatchOwned},
		{domain.RoleViewer, CapUploadSOA},
		{domain.RoleApprover, CapUploadSOA},
		{domain.RoleViewer, CapApprovalQueue},
		{domain.RoleCreator, CapApprovalQueue},
		{domain.RoleViewer, CapMarkPaid},
		{domain.RoleViewer, CapLedgerAndUserAdmin},
		{domain.RoleCreator, CapLedgerAndUserAdmin},
		{domain.RoleApprover, CapLedgerAndUserAdmin},
	}
	for _, c := range forbidden {
		p := domain.Principal{UserID: other, Role: c.role}
		err := Authorize(p, c.cap, &owner)
		if assert.NotNil(t, err, "%s should not have %s", c.role, c.cap) {
			assert.Equal(t, domain.KindForbidden, err.Kind)
		}
	}
}

func TestAuthorize_OwnershipGating(t *testing.T) {
	owner := domain.NewUserID()
	other := domain.NewUserID()

	// Owner may mutate their own batch.
	assert.Nil(t, Authorize(domain.Principal{UserID: owner, Role: domain.RoleCreator}, CapMutateBatchOwned, &owner))

	// A different creator may not mutate someone else's batch.
	err := Authorize(domain.Principal{UserID: other, Role: domain.RoleCreator}, CapMutateBatchOwned, &owner)
	if assert.NotNil(t, err) {
		assert.Equal(t, domain.KindForbidden, err.Kind)
	}

	// Admin bypasses ownership.
	assert.Nil(t, Authorize(domain.Principal{UserID: other, Role: domain.RoleAdmin}, CapMutateBatchOwned, &owner))
}

func TestSanitizeRequestedRole_NeverMintsAdmin(t *testing.T) {
	assert.Equal(t, domain.RoleViewer, SanitizeRequestedRole(domain.RoleAdmin))
	assert.Equal(t, domain.RoleCreator, SanitizeRequestedRole(domain.RoleCreator))
	assert.Equal(t, domain.RoleViewer, SanitizeRequestedRole(domain.Role("bogus")))
}
