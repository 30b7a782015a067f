package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldOwner       = "owner"
	FieldPeriod      = "period"
	FieldKind        = "kind"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldChatID      = "chat_id"
	FieldError       = "error"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentTelegram = "telegram"
	ComponentSheets   = "sheets"
)
