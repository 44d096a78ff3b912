package postgres

import (
	"context"

	"github.com/warp/paymentflow/domain"
)

// SOAStore adapts a locked transaction to soa.Store for the duration of a
// single workflow operation. The caller is responsible for having already
// locked the owning payment_requests row (soa.Upload and
// soa.GenerateForBatch both assume this).
type SOAStore struct {
	Tx Tx
}

func (s SOAStore) NextVersionNumber(ctx context.Context, requestID domain.RequestID) (int, error) {
	row := s.Tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(version_number), 0) + 1 FROM soa_versions WHERE request_id = $1
	`, requestID)
	var next int
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (s SOAStore) InsertVersion(ctx context.Context, v domain.SOAVersion) error {
	_, err := s.Tx.Exec(ctx, `
		INSERT INTO soa_versions (id, request_id, version_number, document_ref, source, uploaded_at, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, v.ID, v.RequestID, v.VersionNumber, v.DocumentRef, v.Source, v.UploadedAt, v.UploadedBy)
	return err
}

func (s SOAStore) LatestGenerated(ctx context.Context, requestID domain.RequestID) (domain.SOAVersion, bool, error) {
	row := s.Tx.QueryRow(ctx, `
		SELECT id, request_id, version_number, document_ref, source, uploaded_at, uploaded_by
		FROM soa_versions WHERE request_id = $1 AND source = 'GENERATED'
		ORDER BY version_number DESC LIMIT 1
	`, requestID)
	var v domain.SOAVersion
	err := row.Scan(&v.ID, &v.RequestID, &v.VersionNumber, &v.DocumentRef, &v.Source, &v.UploadedAt, &v.UploadedBy)
	if err != nil {
		if isNoRows(err) {
			return domain.SOAVersion{}, false, nil
		}
		return domain.SOAVersion{}, false, err
	}
	return v, true, nil
}

// ListVersions returns every SOA version for a request, oldest first.
func ListVersions(ctx context.Context, tx Tx, requestID domain.RequestID) ([]domain.SOAVersion, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, request_id, version_number, document_ref, source, uploaded_at, uploaded_by
		FROM soa_versions WHERE request_id = $1 ORDER BY version_number ASC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SOAVersion
	for rows.Next() {
		var v domain.SOAVersion
		if err := rows.Scan(&v.ID, &v.RequestID, &v.VersionNumber, &v.DocumentRef, &v.Source, &v.UploadedAt, &v.UploadedBy); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
