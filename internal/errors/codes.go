package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrNotImplemented  ErrorCode = "not_implemented"
	ErrUnavailable     ErrorCode = "service_unavailable"
	ErrAlreadyRunning  ErrorCode = "already_running"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrMissingConfig   ErrorCode = "missing_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"

	// Bus errors
	ErrBusOpen        ErrorCode = "bus_open_failed"
	ErrBusTransaction ErrorCode = "bus_transaction_failed"
	ErrBusClosed      ErrorCode = "bus_closed"

	// Sensor module errors
	ErrModuleCreate ErrorCode = "module_create_failed"
	ErrModuleRead   ErrorCode = "module_read_failed"
	ErrNoData       ErrorCode = "sensor_no_data"
	ErrNotReady     ErrorCode = "sensor_not_ready"
	ErrBadChecksum  ErrorCode = "sensor_bad_checksum"

	// Plugin errors
	ErrPluginLoad      ErrorCode = "plugin_load_failed"
	ErrPluginSymbol    ErrorCode = "plugin_symbol_missing"
	ErrPluginConstruct ErrorCode = "plugin_construct_failed"

	// Location errors
	ErrGPSConnect ErrorCode = "gps_connect_failed"
	ErrNoFix      ErrorCode = "gps_no_fix"

	// Actuation errors
	ErrActuation ErrorCode = "actuation_failed"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:         "Internal error occurred",
	ErrInvalidArgument:  "Invalid argument provided",
	ErrNotImplemented:   "Operation not implemented",
	ErrUnavailable:      "Service unavailable",
	ErrAlreadyRunning:   "Another instance is already running",
	ErrInvalidConfig:    "Invalid configuration",
	ErrMissingConfig:    "Missing configuration",
	ErrBindFlags:        "Failed to bind flags",
	ErrReadConfig:       "Failed to read configuration",
	ErrInvalidInterval:  "Invalid interval value",
	ErrInvalidLogLevel:  "Invalid log level",
	ErrInitFailed:       "Initialization failed",
	ErrShutdownFailed:   "Shutdown failed",
	ErrBusOpen:          "Failed to open I2C bus",
	ErrBusTransaction:   "I2C transaction failed",
	ErrBusClosed:        "I2C bus is closed",
	ErrModuleCreate:     "Failed to create sensor module",
	ErrModuleRead:       "Failed to read sensor module",
	ErrNoData:           "Sensor has no data available",
	ErrNotReady:         "Sensor data not ready",
	ErrBadChecksum:      "Sensor response failed checksum",
	ErrPluginLoad:       "Failed to load plugin",
	ErrPluginSymbol:     "Plugin factory symbol missing",
	ErrPluginConstruct:  "Failed to construct plugin sensor",
	ErrGPSConnect:       "Failed to connect to gpsd",
	ErrNoFix:            "No GPS fix available",
	ErrActuation:        "Actuation failed",
	ErrOperationFailed:  "Operation failed",
	ErrTimeout:          "Operation timed out",
	ErrInvalidOperation: "Invalid operation",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
