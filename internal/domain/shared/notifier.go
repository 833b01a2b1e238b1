package shared

// Notifier reports operational outcomes of background processes.
//
// Omg records an informational message with optional structured data.
// Omfg records a failure together with the data that was being processed.
// Neither method may fail; callers rely on them from error paths.
type Notifier interface {
	Omg(message string, data map[string]any)
	Omfg(message string, data any, err error)
}
