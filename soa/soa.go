// Package soa implements gap-free, monotonically increasing version
// numbering for statement-of-account attachments on a PaymentRequest. The
// numbering scheme relies on a unique index plus a read of the current
// max under a row lock inside one transaction, rather than a separate
// sequence object.
package soa

import (
	"context"
	"time"

	"github.com/warp/paymentflow/domain"
)

// Store is the persistence contract SOA versioning needs. NextVersionNumber must be
// called against the request row while it is locked for update by the
// caller's transaction, so two concurrent uploads cannot compute the same
// next version.
type Store interface {
	NextVersionNumber(ctx context.Context, requestID domain.RequestID) (int, error)
	InsertVersion(ctx context.Context, v domain.SOAVersion) error
	LatestGenerated(ctx context.Context, requestID domain.RequestID) (domain.SOAVersion, bool, error)
}

// Upload records a new, uploaded SOA version for a request. The caller is
// responsible for having the request row locked for the duration of the
// surrounding transaction.
func Upload(ctx context.Context, store Store, requestID domain.RequestID, documentRef string, uploadedBy domain.UserID) (domain.SOAVersion, error) {
	next, err := store.NextVersionNumber(ctx, requestID)
	if err != nil {
		return domain.SOAVersion{}, err
	}
	v := domain.SOAVersion{
		ID:            domain.NewSOAVersionID(),
		RequestID:     requestID,
		VersionNumber: next,
		DocumentRef:   documentRef,
		Source:        domain.SOAUpload,
		UploadedAt:    time.Now().UTC(),
		UploadedBy:    uploadedBy,
	}
	if insertErr := store.InsertVersion(ctx, v); insertErr != nil {
		return domain.SOAVersion{}, insertErr
	}
	return v, nil
}

// GenerateForBatch creates a GENERATED SOA version for a request as part of
// batch completion, but only if one does not already exist — batch
// completion can be retried, and generation must not mint a new version
// number on every retry.
func GenerateForBatch(ctx context.Context, store Store, requestID domain.RequestID, documentRef string, systemActor domain.UserID) (domain.SOAVersion, bool, error) {
	if existing, found, err := store.LatestGenerated(ctx, requestID); err != nil {
		return domain.SOAVersion{}, false, err
	} else if found {
		return existing, false, nil
	}

	next, err := store.NextVersionNumber(ctx, requestID)
	if err != nil {
		return domain.SOAVersion{}, false, err
	}
	v := domain.SOAVersion{
		ID:            domain.NewSOAVersionID(),
		RequestID:     requestID,
		VersionNumber: next,
		DocumentRef:   documentRef,
		Source:        domain.SOAGenerated,
		UploadedAt:    time.Now().UTC(),
		UploadedBy:    systemActor,
	}
	if insertErr := store.InsertVersion(ctx, v); insertErr != nil {
		return domain.SOAVersion{}, false, insertErr
	}
	return v, true, nil
}
