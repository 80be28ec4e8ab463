package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry installs the process-wide Prometheus registry used by
// NewSessionMetrics. Calling it with enable=false leaves metrics disabled
// and every SessionMetrics implementation returns nil, which all methods
// below treat as a safe no-op receiver.
func InitRegistry(enable bool) *prometheus.Registry {
	enabled = enable
	if !enable {
		registry = nil
		return nil
	}
	registry = prometheus.NewRegistry()
	return registry
}

// IsEnabled reports whether InitRegistry(true) has been called.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the active registry, or nil if metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}
