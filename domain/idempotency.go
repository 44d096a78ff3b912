package domain

import "time"

// IdempotencyRecord is the persisted outcome of one (key, operation) pair:
// the target object it produced and the response kind to replay verbatim
// on retry.
type IdempotencyRecord struct {
	Key          string
	Operation    Operation
	TargetID     ID
	ResponseKind ErrorKind // "" on success
	PayloadHash  string    // detects same-key-different-payload reuse
	CreatedAt    time.Time
}
