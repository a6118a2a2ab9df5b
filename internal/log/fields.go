package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"

	FieldTransactionID = "transaction_id"
	FieldCategoryID    = "category_id"
	FieldCurrency      = "currency"
	FieldDepartment    = "department"
	FieldRange         = "range"
	FieldYear          = "year"
	FieldMonth         = "month"
	FieldAmount        = "amount"
	FieldChange        = "change"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentAnalytics = "analytics"
	ComponentEditor    = "editor"
	ComponentCache     = "cache"
)
