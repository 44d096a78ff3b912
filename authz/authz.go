/*
Package authz implements a single authorization gate function consulted
at the top of every workflow operation. The role-by-capability matrix is
hardcoded here as Go data, not loaded from configuration or a database,
keeping policy constraint tables in-process rather than externally
editable data.
*/
package authz

import "github.com/warp/paymentflow/domain"

// Capability names one row of the role-by-capability matrix.
type Capability string

const (
	CapReadAny            Capability = "READ_ANY"
	CapCreateBatch        Capability = "CREATE_BATCH"
	CapMutateBatchOwned   Capability = "MUTATE_BATCH_OWNED" // add/update/submit/cancel
	CapUploadSOA          Capability = "UPLOAD_SOA"
	CapApprovalQueue      Capability = "APPROVAL_QUEUE" // list pending, approve, reject
	CapMarkPaid           Capability = "MARK_PAID"
	CapLedgerAndUserAdmin Capability = "LEDGER_AND_USER_ADMIN"
)

// rule describes whether a role holds a capability, and whether holding it
// still requires resource ownership.
type rule struct {
	allowed      bool
	ownershipGated bool
}

// matrix is the role-by-capability table.
var matrix = map[Capability]map[domain.Role]rule{
	CapReadAny: {
		domain.RoleViewer:   {allowed: true},
		domain.RoleCreator:  {allowed: true},
		domain.RoleApprover: {allowed: true},
		domain.RoleAdmin:    {allowed: true},
	},
	CapCreateBatch: {
		domain.RoleCreator: {allowed: true},
		domain.RoleAdmin:   {allowed: true},
	},
	CapMutateBatchOwned: {
		domain.RoleCreator: {allowed: true, ownershipGated: true},
		domain.RoleAdmin:   {allowed: true}, // admin bypasses ownership, not the gate itself
	},
	CapUploadSOA: {
		domain.RoleCreator: {allowed: true, ownershipGated: true},
		domain.RoleAdmin:   {allowed: true},
	},
	CapApprovalQueue: {
		domain.RoleApprover: {allowed: true},
		domain.RoleAdmin:    {allowed: true},
	},
	CapMarkPaid: {
		domain.RoleCreator:  {allowed: true},
		domain.RoleApprover: {allowed: true},
		domain.RoleAdmin:    {allowed: true},
	},
	CapLedgerAndUserAdmin: {
		domain.RoleAdmin: {allowed: true},
	},
}

// Authorize is the single authorization gate. owner is the resource's
// owning user id; it is ignored for capabilities that are not
// ownership-gated. Authorize derives its decision solely from principal,
// never from any request payload field.
func Authorize(principal domain.Principal, cap Capability, owner *domain.UserID) *domain.AppError {
	roles, ok := matrix[cap]
	if !ok {
		return domain.Newf(domain.KindInternal, "unknown capability %q", cap)
	}
	r, ok := roles[principal.Role]
	if !ok || !r.allowed {
		return domain.Newf(domain.KindForbidden, "role %s may not perform %s", principal.Role, cap)
	}
	if r.ownershipGated && !principal.IsAdmin() {
		if owner == nil {
			return domain.Newf(domain.KindInternal, "ownership check requested without an owner for %s", cap)
		}
		if !principal.Owns(*owner) {
			return domain.Newf(domain.KindForbidden, "%s requires ownership of the resource", cap)
		}
	}
	return nil
}

// CanCreateUser reports whether a principal may invoke user creation at
// all. It never inspects the payload's requested role: user creation can
// never mint an ADMIN through this gate regardless of what is asked for.
func CanCreateUser(principal domain.Principal) *domain.AppError {
	return Authorize(principal, CapLedgerAndUserAdmin, nil)
}

// SanitizeRequestedRole downgrades any attempt to create an ADMIN via the
// user-creation operation. Only a privileged bootstrap channel outside
// this gate may produce an ADMIN account.
func SanitizeRequestedRole(requested domain.Role) domain.Role {
	if requested == domain.RoleAdmin || !requested.Valid() {
		return domain.RoleViewer
	}
	return requested
}
