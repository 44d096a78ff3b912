/*
Package ledger defines the narrow read-only contract the workflow service
needs from the reference-data collaborator (vendors, subcontractors,
sites). CRUD over these entities lives in an external system — only
read-through validation and snapshotting at PaymentRequest creation time
are implemented here, against narrow single-entity interfaces rather than
a monolithic database handle.
*/
package ledger

import (
	"context"

	"github.com/warp/paymentflow/domain"
)

// VendorLookup reads a single vendor by id.
type VendorLookup interface {
	GetVendor(ctx context.Context, id domain.VendorID) (domain.Vendor, bool, error)
}

// SubcontractorLookup reads a single subcontractor by id.
type SubcontractorLookup interface {
	GetSubcontractor(ctx context.Context, id domain.SubcontractorID) (domain.Subcontractor, bool, error)
}

// SiteLookup reads a single site by id.
type SiteLookup interface {
	GetSite(ctx context.Context, id domain.SiteID) (domain.Site, bool, error)
}

// Collaborator is the full read-through contract the workflow service
// depends on when validating and snapshotting a ledger-driven
// PaymentRequest.
type Collaborator interface {
	VendorLookup
	SubcontractorLookup
	SiteLookup
}

// ResolveEntity returns the active entity's display name for snapshotting,
// validating that the id matching the given entity type is set, that the
// entity exists, and that it is active. It does not check that the other
// id is unset; PaymentRequest.ValidateShape does that.
func ResolveEntity(ctx context.Context, c Collaborator, entityType domain.EntityType, vendorID *domain.VendorID, subcontractorID *domain.SubcontractorID) (displayName string, err *domain.AppError) {
	switch entityType {
	case domain.EntityVendor:
		if vendorID == nil {
			return "", domain.New(domain.KindValidation, "vendor id required for VENDOR entity type")
		}
		v, found, lookupErr := c.GetVendor(ctx, *vendorID)
		if lookupErr != nil {
			return "", domain.Wrap(lookupErr, domain.KindInternal, "failed to look up vendor")
		}
		if !found {
			return "", domain.New(domain.KindNotFound, "vendor not found")
		}
		if !v.IsActive {
			return "", domain.New(domain.KindValidation, "vendor is not active")
		}
		return v.Name, nil
	case domain.EntitySubcontractor:
		if subcontractorID == nil {
			return "", domain.New(domain.KindValidation, "subcontractor id required for SUBCONTRACTOR entity type")
		}
		s, found, lookupErr := c.GetSubcontractor(ctx, *subcontractorID)
		if lookupErr != nil {
			return "", domain.Wrap(lookupErr, domain.KindInternal, "failed to look up subcontractor")
		}
		if !found {
			return "", domain.New(domain.KindNotFound, "subcontractor not found")
		}
		if !s.IsActive {
			return "", domain.New(domain.KindValidation, "subcontractor is not active")
		}
		return s.Name, nil
	default:
		return "", domain.Newf(domain.KindValidation, "unknown entity type %q", entityType)
	}
}

// ResolveSite returns the site's code for snapshotting, requiring it be
// active.
func ResolveSite(ctx context.Context, c Collaborator, siteID domain.SiteID) (code string, err *domain.AppError) {
	s, found, lookupErr := c.GetSite(ctx, siteID)
	if lookupErr != nil {
		return "", domain.Wrap(lookupErr, domain.KindInternal, "failed to look up site")
	}
	if !found {
		return "", domain.New(domain.KindNotFound, "site not found")
	}
	if !s.IsActive {
		return "", domain.New(domain.KindValidation, "site is not active")
	}
	return s.Code, nil
}
