package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldUserAgent     = "user_agent"
	FieldError         = "error"
	FieldOperation     = "operation"

	FieldTenantID    = "tenant_id"
	FieldInstituteID = "institute_id"
	FieldLedgerID    = "ledger_id"
	FieldEntryID     = "entry_id"
	FieldFundID      = "fund_id"
	FieldAmountCents = "amount_cents"
	FieldReport      = "report"
	FieldEventID     = "event_id"
	FieldEventKind   = "event_kind"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentCatalog   = "catalog"
	ComponentEntries   = "entries"
	ComponentReports   = "reports"
	ComponentPettyCash = "pettycash"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpReport    = "report"
	OpReplenish = "replenish"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)
