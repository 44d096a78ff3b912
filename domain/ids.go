/*
Package domain holds the entities, enums, and invariants of the payment
workflow engine. It performs no I/O: every type here is a pure data shape
or a pure validation function.
*/
package domain

import (
	"github.com/google/uuid"
)

// ID is an opaque 128-bit identifier shared by every entity in the system.
type ID uuid.UUID

// NewID generates a fresh random ID.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses a canonical UUID string into an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID(u), nil
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

func (id ID) IsZero() bool {
	return id == ID{}
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = ID(u)
	return nil
}

// Typed ID newtypes prevent mixing identifiers of different entity kinds
// across function signatures even though they all share the same
// underlying representation.
type (
	UserID               ID
	BatchID              ID
	RequestID            ID
	ApprovalID           ID
	SOAVersionID         ID
	VendorID             ID
	SubcontractorID      ID
	SiteID               ID
	ClientID             ID
	VendorTypeID         ID
	SubcontractorScopeID ID
)

func (id UserID) String() string               { return ID(id).String() }
func (id BatchID) String() string              { return ID(id).String() }
func (id RequestID) String() string            { return ID(id).String() }
func (id ApprovalID) String() string           { return ID(id).String() }
func (id SOAVersionID) String() string         { return ID(id).String() }
func (id VendorID) String() string             { return ID(id).String() }
func (id SubcontractorID) String() string      { return ID(id).String() }
func (id SiteID) String() string               { return ID(id).String() }
func (id ClientID) String() string             { return ID(id).String() }
func (id VendorTypeID) String() string         { return ID(id).String() }
func (id SubcontractorScopeID) String() string { return ID(id).String() }

func (id UserID) IsZero() bool          { return ID(id).IsZero() }
func (id BatchID) IsZero() bool         { return ID(id).IsZero() }
func (id RequestID) IsZero() bool       { return ID(id).IsZero() }
func (id ApprovalID) IsZero() bool      { return ID(id).IsZero() }
func (id SOAVersionID) IsZero() bool    { return ID(id).IsZero() }
func (id VendorID) IsZero() bool        { return ID(id).IsZero() }
func (id SubcontractorID) IsZero() bool { return ID(id).IsZero() }
func (id SiteID) IsZero() bool          { return ID(id).IsZero() }

// NewBatchID, NewRequestID, ... generate fresh typed identifiers.
func NewUserID() UserID               { return UserID(NewID()) }
func NewBatchID() BatchID             { return BatchID(NewID()) }
func NewRequestID() RequestID         { return RequestID(NewID()) }
func NewApprovalID() ApprovalID       { return ApprovalID(NewID()) }
func NewSOAVersionID() SOAVersionID   { return SOAVersionID(NewID()) }
