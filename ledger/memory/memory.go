// Package memory is an in-memory ledger.Collaborator, standing in for the
// live reference-data service during tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/warp/paymentflow/domain"
)

type Store struct {
	mu             sync.RWMutex
	vendors        map[domain.VendorID]domain.Vendor
	subcontractors map[domain.SubcontractorID]domain.Subcontractor
	sites          map[domain.SiteID]domain.Site
	clients        map[domain.ClientID]domain.Client
	vendorTypes    map[domain.VendorTypeID]domain.VendorType
	scopes         map[domain.SubcontractorScopeID]domain.SubcontractorScope
}

func New() *Store {
	return &Store{
		vendors:        make(map[domain.VendorID]domain.Vendor),
		subcontractors: make(map[domain.SubcontractorID]domain.Subcontractor),
		sites:          make(map[domain.SiteID]domain.Site),
		clients:        make(map[domain.ClientID]domain.Client),
		vendorTypes:    make(map[domain.VendorTypeID]domain.VendorType),
		scopes:         make(map[domain.SubcontractorScopeID]domain.SubcontractorScope),
	}
}

func (s *Store) PutVendor(v domain.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors[v.ID] = v
}

func (s *Store) PutSubcontractor(sc domain.Subcontractor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subcontractors[sc.ID] = sc
}

func (s *Store) PutSite(site domain.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites[site.ID] = site
}

func (s *Store) PutClient(c domain.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

func (s *Store) PutVendorType(vt domain.VendorType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendorTypes[vt.ID] = vt
}

func (s *Store) PutSubcontractorScope(sc domain.SubcontractorScope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes[sc.ID] = sc
}

func (s *Store) GetVendor(ctx context.Context, id domain.VendorID) (domain.Vendor, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[id]
	return v, ok, nil
}

func (s *Store) GetSubcontractor(ctx context.Context, id domain.SubcontractorID) (domain.Subcontractor, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.subcontractors[id]
	return sc, ok, nil
}

func (s *Store) GetSite(ctx context.Context, id domain.SiteID) (domain.Site, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	site, ok := s.sites[id]
	return site, ok, nil
}

func (s *Store) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) ListSubcontractors(ctx context.Context) ([]domain.Subcontractor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Subcontractor, 0, len(s.subcontractors))
	for _, sc := range s.subcontractors {
		out = append(out, sc)
	}
	return out, nil
}

func (s *Store) ListSites(ctx context.Context) ([]domain.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Site, 0, len(s.sites))
	for _, site := range s.sites {
		out = append(out, site)
	}
	return out, nil
}
