package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// DefaultMaxBodySize caps inbound envelopes at 1 MB unless configured.
const DefaultMaxBodySize = 1048576

// Load reads, interpolates, defaults, and validates configuration from a
// file. Any error here is a configuration error: the caller must fail fast
// and never become ready to accept events.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	if info.IsDir() {
		// Directory provided - look for config.yaml inside
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Apply environment variable interpolation before parsing
	interpolated := interpolateEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&cfg)

	// Verify the file against .checksums when a manifest exists alongside it
	if err := verifyConfigHash(absPath); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DiscoverConfigPath finds the config file by checking standard locations.
// Priority order: $TASKGATE_CONFIG, ~/.config/taskgate, /etc/taskgate, ./config.yaml
func DiscoverConfigPath() (string, error) {
	if path := os.Getenv("TASKGATE_CONFIG"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userConfigDir := filepath.Join(homeDir, ".config", "taskgate")
		if _, err := os.Stat(userConfigDir); err == nil {
			return userConfigDir, nil
		}
	}

	systemConfigDir := "/etc/taskgate"
	if _, err := os.Stat(systemConfigDir); err == nil {
		return systemConfigDir, nil
	}

	legacyConfigPath := "./config.yaml"
	if _, err := os.Stat(legacyConfigPath); err == nil {
		return legacyConfigPath, nil
	}

	return "", fmt.Errorf("no config found (checked: $TASKGATE_CONFIG, ~/.config/taskgate, /etc/taskgate, ./config.yaml)")
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is (caught by validation when required).
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// applyDefaults merges default values into config where not explicitly set.
func applyDefaults(cfg *Config) {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	if cfg.Service.InvocationBudget == 0 {
		cfg.Service.InvocationBudget = defaults.Service.InvocationBudget
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = defaults.Backend.Timeout
	}
	if cfg.Ingest.Listen == "" {
		cfg.Ingest.Listen = defaults.Ingest.Listen
	}
	if cfg.Ingest.Path == "" {
		cfg.Ingest.Path = defaults.Ingest.Path
	}
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = defaults.Metrics.Listen
	}
}

// validate performs fail-fast validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}
	if cfg.Service.InvocationBudget <= 0 {
		return fmt.Errorf("service.invocation_budget must be positive")
	}

	// Placement: the builder consumes the first two subnets, so fewer than
	// two is a startup failure, not a per-event one.
	if cfg.Placement.ClusterID == "" {
		return fmt.Errorf("placement.cluster_id is required")
	}
	if cfg.Placement.TaskTemplateID == "" {
		return fmt.Errorf("placement.task_template_id is required")
	}
	if len(cfg.Placement.SubnetIDs) < 2 {
		return fmt.Errorf("placement.subnet_ids requires at least 2 entries (got %d)", len(cfg.Placement.SubnetIDs))
	}
	if cfg.Placement.SecurityBoundaryID == "" {
		return fmt.Errorf("placement.security_boundary_id is required")
	}
	if cfg.Placement.ContainerName == "" {
		return fmt.Errorf("placement.container_name is required")
	}

	if cfg.Backend.Endpoint == "" {
		return fmt.Errorf("backend.endpoint is required")
	}
	if cfg.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}

	// Check for unresolved env vars in secret-bearing fields (security: no
	// placeholder tokens sent to the backend)
	if err := checkUnresolved("backend.auth_token", cfg.Backend.AuthToken); err != nil {
		return err
	}
	if err := checkUnresolved("ingest.secret", cfg.Ingest.Secret); err != nil {
		return err
	}

	if !strings.HasPrefix(cfg.Ingest.Path, "/") {
		return fmt.Errorf("ingest.path must start with / (got %q)", cfg.Ingest.Path)
	}
	if (cfg.Ingest.SignatureHeader == "") != (cfg.Ingest.Secret == "") {
		return fmt.Errorf("ingest.signature_header and ingest.secret must be set together")
	}
	if _, err := ParseMaxBodySize(cfg.Ingest.MaxBodySize); err != nil {
		return fmt.Errorf("ingest.max_body_size: %w", err)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}

	return nil
}

func checkUnresolved(field, value string) error {
	if envVarPattern.MatchString(value) {
		matches := envVarPattern.FindStringSubmatch(value)
		if len(matches) > 1 {
			return fmt.Errorf("%s: environment variable ${%s} is not set", field, matches[1])
		}
		return fmt.Errorf("%s: unresolved environment variable", field)
	}
	return nil
}

// ParseMaxBodySize parses size strings like "1MB", "512KB", "2048576" to
// bytes. Returns DefaultMaxBodySize if empty.
func ParseMaxBodySize(size string) (int64, error) {
	if size == "" {
		return DefaultMaxBodySize, nil
	}

	upper := strings.ToUpper(size)
	multiplier := int64(1)

	if strings.HasSuffix(upper, "KB") {
		multiplier = 1024
		size = strings.TrimSuffix(upper, "KB")
	} else if strings.HasSuffix(upper, "MB") {
		multiplier = 1024 * 1024
		size = strings.TrimSuffix(upper, "MB")
	} else if strings.HasSuffix(upper, "GB") {
		multiplier = 1024 * 1024 * 1024
		size = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(size), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}

	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result < 0 { // Check for overflow
		return 0, fmt.Errorf("size too large")
	}

	return result, nil
}
