package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldUser        = "user"
	FieldRecordID    = "record_id"
	FieldRuleID      = "rule_id"
	FieldAchievement = "achievement"
	FieldCurrency    = "currency"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentRecurring = "recurring"
)
