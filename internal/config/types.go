package config

import "time"

// Config represents the complete taskgate configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Placement PlacementConfig `yaml:"placement"`
	Backend   BackendConfig   `yaml:"backend"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`

	// InvocationBudget bounds one event handling end to end, including the
	// backend call. An invocation that exceeds it is reported as a timeout
	// failure, never left hanging.
	InvocationBudget time.Duration `yaml:"invocation_budget"`

	// PIDFile is the single-instance lock path. Empty derives
	// <tempdir>/<name>.pid.
	PIDFile string `yaml:"pid_file,omitempty"`
}

// PlacementConfig defines the static network/identity parameters under which
// every launched task runs.
type PlacementConfig struct {
	ClusterID          string            `yaml:"cluster_id"`
	TaskTemplateID     string            `yaml:"task_template_id"`
	SubnetIDs          []string          `yaml:"subnet_ids"`
	SecurityBoundaryID string            `yaml:"security_boundary_id"`
	ContainerName      string            `yaml:"container_name"`
	StaticEnv          map[string]string `yaml:"static_env,omitempty"`
}

// BackendConfig defines the orchestration backend connection.
type BackendConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	AuthToken string        `yaml:"auth_token"`
	Timeout   time.Duration `yaml:"timeout"`
}

// IngestConfig defines the inbound event HTTP listener.
type IngestConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`

	// SignatureHeader and Secret enable HMAC-SHA256 verification of inbound
	// envelopes. Both empty disables verification (trusted event source).
	SignatureHeader string `yaml:"signature_header,omitempty"`
	Secret          string `yaml:"secret,omitempty"`

	MaxBodySize string `yaml:"max_body_size,omitempty"`
}

// MetricsConfig defines the Prometheus metrics listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// ChecksumManifest is the .checksums file written by `taskgate lock`.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:             "taskgate",
			LogLevel:         "info",
			InvocationBudget: 30 * time.Second,
		},
		Backend: BackendConfig{
			Timeout: 10 * time.Second,
		},
		Ingest: IngestConfig{
			Listen: "127.0.0.1:8081",
			Path:   "/events",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9090",
		},
	}
}
