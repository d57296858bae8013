package logging

// Standardized field names for structured logging.
// Keep these stable: log processors filter on them.
const (
	FieldFile       = "file_path"
	FieldOutputFile = "output_file"
	FieldPage       = "page"
	FieldPages      = "pages"
	FieldMethod     = "method"
	FieldImages     = "images"
	FieldChars      = "chars"
	FieldStage      = "stage"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldRunID      = "run_id"
	FieldComponent  = "component"
	FieldEngine     = "engine"
)
