package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldCollection     = "collection"
	FieldPeriodKey      = "period_key"
	FieldPeriodStart    = "period_start"
	FieldAmount         = "amount"
	FieldBalance        = "balance"
	FieldExpenseID      = "expense_id"
	FieldIncomeID       = "income_id"
	FieldGoalID         = "goal_id"
	FieldSubscriptionID = "subscription_id"
	FieldCount          = "count"
	FieldYear           = "year"
	FieldVersion        = "version"
	FieldBackend        = "backend"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentStore        = "store"
	ComponentStorage      = "storage"
	ComponentLedger       = "ledger"
	ComponentMaterializer = "materializer"
	ComponentStatistics   = "statistics"
	ComponentAllocator    = "allocator"
	ComponentAMQP         = "amqp"
	ComponentSheets       = "sheets"
	ComponentWorker       = "worker"
	ComponentBackend      = "backend"
	ComponentCache        = "cache"
	ComponentCLI          = "cli"
	ComponentHTTP         = "http"
)

// Operations defines standard operation names
const (
	OpCreate      = "create"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpLoad        = "load"
	OpSave        = "save"
	OpImport      = "import"
	OpExport      = "export"
	OpMaterialize = "materialize"
	OpAllocate    = "allocate"
	OpSolidify    = "solidify"
	OpRefresh     = "refresh"
	OpPublish     = "publish"
	OpShutdown    = "shutdown"
	OpStartup     = "startup"
	OpMigrate     = "migrate"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithCollection adds the collection name a store operation touched
func (f LogFields) WithCollection(name string) LogFields {
	f[FieldCollection] = name
	return f
}

// WithPeriod adds period key and start fields
func (f LogFields) WithPeriod(key string, start string) LogFields {
	f[FieldPeriodKey] = key
	if start != "" {
		f[FieldPeriodStart] = start
	}
	return f
}

// WithAmount adds amount field
func (f LogFields) WithAmount(amount float64) LogFields {
	f[FieldAmount] = amount
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
