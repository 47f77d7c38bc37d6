package log

// FieldComponent tags every record with the subsystem that wrote it.
const FieldComponent = "component"

// Component names.
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentEvents = "events"
	ComponentWorker = "worker"
)
