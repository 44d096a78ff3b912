package postgres

import (
	"context"

	"github.com/warp/paymentflow/domain"
)

// LedgerStore adapts the pool to ledger.Collaborator for read-through
// validation and snapshotting. The ledger's own write path (vendor,
// subcontractor, site, client CRUD and admin UI) is a separate external
// system; this store only ever reads these tables.
type LedgerStore struct {
	store *Store
}

func NewLedgerStore(s *Store) LedgerStore {
	return LedgerStore{store: s}
}

func (l LedgerStore) GetVendor(ctx context.Context, id domain.VendorID) (domain.Vendor, bool, error) {
	row := l.store.pool.QueryRow(ctx, `
		SELECT id, vendor_type_id, name, is_active FROM vendors WHERE id = $1
	`, id)
	var v domain.Vendor
	err := row.Scan(&v.ID, &v.VendorTypeID, &v.Name, &v.IsActive)
	if err != nil {
		if isNoRows(err) {
			return domain.Vendor{}, false, nil
		}
		return domain.Vendor{}, false, err
	}
	return v, true, nil
}

func (l LedgerStore) GetSubcontractor(ctx context.Context, id domain.SubcontractorID) (domain.Subcontractor, bool, error) {
	row := l.store.pool.QueryRow(ctx, `
		SELECT id, scope_id, name, is_active FROM subcontractors WHERE id = $1
	`, id)
	var sc domain.Subcontractor
	err := row.Scan(&sc.ID, &sc.ScopeID, &sc.Name, &sc.IsActive)
	if err != nil {
		if isNoRows(err) {
			return domain.Subcontractor{}, false, nil
		}
		return domain.Subcontractor{}, false, err
	}
	return sc, true, nil
}

func (l LedgerStore) GetSite(ctx context.Context, id domain.SiteID) (domain.Site, bool, error) {
	row := l.store.pool.QueryRow(ctx, `
		SELECT id, client_id, code, name, is_active FROM sites WHERE id = $1
	`, id)
	var s domain.Site
	err := row.Scan(&s.ID, &s.ClientID, &s.Code, &s.Name, &s.IsActive)
	if err != nil {
		if isNoRows(err) {
			return domain.Site{}, false, nil
		}
		return domain.Site{}, false, err
	}
	return s, true, nil
}
