package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/paymentflow/domain"
)

// inMemoryLog is a minimal Log double used to assert append-only behavior
// without a live Postgres connection.
type inMemoryLog struct {
	entries []domain.AuditLogEntry
}

func (l *inMemoryLog) Append(ctx context.Context, entry domain.AuditLogEntry) error {
	l.entries = append(l.entries, entry)
	return nil
}

func (l *inMemoryLog) Query(ctx context.Context, filter Filter) ([]domain.AuditLogEntry, error) {
	var out []domain.AuditLogEntry
	for _, e := range l.entries {
		if filter.EntityKind != nil && e.EntityKind != *filter.EntityKind {
			continue
		}
		if filter.EntityID != nil && e.EntityID != *filter.EntityID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func TestLog_HasNoUpdateOrDeleteMethod(t *testing.T) {
	// Compile-time property: Log's method set is exactly {Append, Query}.
	// If an Update or Delete method is ever added to the interface, this
	// type assertion (and every implementation) stops compiling.
	var _ Log = (*inMemoryLog)(nil)
}

func TestNewEntry_RoundTripsState(t *testing.T) {
	actor := domain.NewUserID()
	entry, err := NewEntry(domain.EventBatchCreated, &actor, domain.EntityKindBatch, domain.NewID(), nil, map[string]string{"status": "DRAFT"})
	require.NoError(t, err)
	assert.Equal(t, domain.EventBatchCreated, entry.EventType)
	assert.Nil(t, entry.PreviousState)
	assert.Contains(t, string(entry.NewState), "DRAFT")
}

func TestQuery_FiltersByEntity(t *testing.T) {
	log := &inMemoryLog{}
	batchID := domain.NewID()
	requestID := domain.NewID()
	e1, _ := NewEntry(domain.EventBatchCreated, nil, domain.EntityKindBatch, batchID, nil, nil)
	e2, _ := NewEntry(domain.EventRequestCreated, nil, domain.EntityKindRequest, requestID, nil, nil)
	require.NoError(t, log.Append(context.Background(), e1))
	require.NoError(t, log.Append(context.Background(), e2))

	kind := domain.EntityKindBatch
	results, err := log.Query(context.Background(), Filter{EntityKind: &kind})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.EventBatchCreated, results[0].EventType)
}
