package log

// Shared attribute keys. Handlers, the worker and the middleware all
// log through these so field names stay greppable across components.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldDayID         = "day_id"
	FieldDate          = "date"
	FieldPlatform      = "platform"
	FieldPaymentMethod = "payment_method"
	FieldCategory      = "category"
	FieldAmountCents   = "amount_cents"
	FieldSheetsRef     = "sheets_ref"
)

// Component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentShift   = "shift"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
)

// Operation names.
const (
	OpStartDay   = "start_day"
	OpEndDay     = "end_day"
	OpAddIncome  = "add_income"
	OpAddExpense = "add_expense"
	OpPause      = "pause"
	OpExport     = "export"
)
