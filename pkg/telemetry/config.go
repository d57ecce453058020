package telemetry

// Config holds OpenTelemetry configuration.
type Config struct {
	// Enabled indicates whether tracing is enabled.
	Enabled bool

	// ServiceName is the reported service name. Defaults to "sofa-bound".
	ServiceName string

	// ServiceVersion is the reported service version.
	ServiceVersion string

	// Endpoint is the OTLP collector endpoint.
	Endpoint string

	// Protocol is the OTLP protocol: "grpc" (default) or "http".
	Protocol string

	// Insecure disables transport security toward the collector.
	Insecure bool

	// SampleRatio is the trace sampling ratio in [0, 1]; values outside
	// the range clamp, and 0 means full sampling for convenience.
	SampleRatio float64
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "sofa-bound"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "unknown"
	}
	if c.Protocol == "" {
		c.Protocol = "grpc"
	}
}
