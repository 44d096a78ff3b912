package domain

// The types below describe the display shape of the reference-data
// ("ledger") collaborator's entities, as read by the workflow service for
// validation and snapshotting. The collaborator itself — CRUD,
// persistence, admin UI — is an external system; this module only needs
// enough of its shape to validate and snapshot against it, via the
// ledger.VendorLookup / ledger.SubcontractorLookup / ledger.SiteLookup
// interfaces.

type Client struct {
	ID       ClientID
	Name     string
	IsActive bool
}

type Site struct {
	ID       SiteID
	ClientID ClientID
	Code     string // unique
	Name     string
	IsActive bool
}

type VendorType struct {
	ID   VendorTypeID
	Name string
}

type SubcontractorScope struct {
	ID   SubcontractorScopeID
	Name string
}

type Vendor struct {
	ID           VendorID
	VendorTypeID VendorTypeID
	Name         string // unique within type
	IsActive     bool
}

type Subcontractor struct {
	ID      SubcontractorID
	ScopeID SubcontractorScopeID
	Name    string // unique within scope
	IsActive bool
}
