package log

// Standard attribute keys
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatus     = "status_code"
	FieldDurationMs = "duration_ms"
	FieldBytes      = "bytes"
	FieldError      = "error"
	FieldClientID   = "client_id"
	FieldTaskID     = "task_id"
	FieldFormat     = "format"
	FieldFile       = "file"
	FieldAddr       = "addr"
	FieldDriver     = "driver"
)

// Components
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentStore  = "store"
	ComponentExport = "export"
	ComponentCLI    = "cli"
)
