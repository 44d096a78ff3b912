package domain

// Role is read only from the authenticated principal's server-side user
// record. It must never be trusted from a request payload.
type Role string

const (
	RoleCreator  Role = "CREATOR"
	RoleApprover Role = "APPROVER"
	RoleViewer   Role = "VIEWER"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCreator, RoleApprover, RoleViewer, RoleAdmin:
		return true
	}
	return false
}

// BatchStatus is the lifecycle status of a PaymentBatch.
type BatchStatus string

const (
	BatchDraft      BatchStatus = "DRAFT"
	BatchSubmitted  BatchStatus = "SUBMITTED"
	BatchProcessing BatchStatus = "PROCESSING"
	BatchCompleted  BatchStatus = "COMPLETED"
	BatchCancelled  BatchStatus = "CANCELLED"
)

// RequestStatus is the lifecycle status of a PaymentRequest.
type RequestStatus string

const (
	RequestDraft            RequestStatus = "DRAFT"
	RequestSubmitted        RequestStatus = "SUBMITTED"
	RequestPendingApproval  RequestStatus = "PENDING_APPROVAL"
	RequestApproved         RequestStatus = "APPROVED"
	RequestRejected         RequestStatus = "REJECTED"
	RequestPaid             RequestStatus = "PAID"
)

// EntityType distinguishes the two counterparty kinds a ledger-driven
// PaymentRequest may reference.
type EntityType string

const (
	EntityVendor        EntityType = "VENDOR"
	EntitySubcontractor EntityType = "SUBCONTRACTOR"
)

// ApprovalDecision is the outcome recorded by an ApprovalRecord.
type ApprovalDecision string

const (
	DecisionApproved ApprovalDecision = "APPROVED"
	DecisionRejected ApprovalDecision = "REJECTED"
)

// SOASource distinguishes a user-uploaded attachment from one the system
// rendered once a batch completed.
type SOASource string

const (
	SOAUpload    SOASource = "UPLOAD"
	SOAGenerated SOASource = "GENERATED"
)

// AuditEventType enumerates every event the audit log may record. Ledger
// entity kinds are included in the entity-kind filter (see DESIGN.md,
// "Open Question: audit entity-type filter").
type AuditEventType string

const (
	EventBatchCreated    AuditEventType = "BATCH_CREATED"
	EventRequestCreated  AuditEventType = "REQUEST_CREATED"
	EventRequestUpdated  AuditEventType = "REQUEST_UPDATED"
	EventBatchSubmitted  AuditEventType = "BATCH_SUBMITTED"
	EventRequestSubmitted AuditEventType = "REQUEST_SUBMITTED"
	EventBatchCancelled  AuditEventType = "BATCH_CANCELLED"
	EventApprovalRecorded AuditEventType = "APPROVAL_RECORDED"
	EventRequestPaid     AuditEventType = "REQUEST_PAID"
	EventBatchCompleted  AuditEventType = "BATCH_COMPLETED"
	EventSOAUploaded     AuditEventType = "SOA_UPLOADED"
	EventSOAGenerated    AuditEventType = "SOA_GENERATED"
	EventSOADownloaded   AuditEventType = "SOA_DOWNLOADED"
	EventLedgerClient        AuditEventType = "LEDGER_CLIENT"
	EventLedgerSite          AuditEventType = "LEDGER_SITE"
	EventLedgerVendor        AuditEventType = "LEDGER_VENDOR"
	EventLedgerSubcontractor AuditEventType = "LEDGER_SUBCONTRACTOR"
)

// EntityKind is the audit log's entity-kind discriminant; it spans both
// core workflow entities and ledger collaborator entities.
type EntityKind string

const (
	EntityKindBatch         EntityKind = "BATCH"
	EntityKindRequest       EntityKind = "REQUEST"
	EntityKindApproval      EntityKind = "APPROVAL"
	EntityKindSOAVersion    EntityKind = "SOA_VERSION"
	EntityKindVendor        EntityKind = "VENDOR"
	EntityKindSubcontractor EntityKind = "SUBCONTRACTOR"
	EntityKindSite          EntityKind = "SITE"
	EntityKindClient        EntityKind = "CLIENT"
)

// Operation names the scope the idempotency registry replay-detects by.
type Operation string

const (
	OpCreateBatch           Operation = "CREATE_BATCH"
	OpCreatePaymentRequest  Operation = "CREATE_PAYMENT_REQUEST"
	OpUpdatePaymentRequest  Operation = "UPDATE_PAYMENT_REQUEST"
	OpSubmitBatch           Operation = "SUBMIT_BATCH"
	OpCancelBatch           Operation = "CANCEL_BATCH"
	OpApprovePaymentRequest Operation = "APPROVE_PAYMENT_REQUEST"
	OpRejectPaymentRequest  Operation = "REJECT_PAYMENT_REQUEST"
	OpMarkPaymentPaid       Operation = "MARK_PAYMENT_PAID"
	OpUploadSOA             Operation = "UPLOAD_SOA"
)
