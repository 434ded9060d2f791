package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mycenter/service"

	"gopkg.in/yaml.v3"
)

// Env variable names.
const (
	envHTTPPort       = "SERVICE_PORT_HTTP"
	envToken          = "SERVICE_TOKEN"
	envConfigPath     = "CONFIG_PATH"
	envAdminPort      = "ADMIN_PORT_HTTP"
	envHealthPort     = "HEALTH_PORT_GRPC"
	envRedisAddr      = "REDIS_ADDR"
	envTLSCertFile    = "TLS_CERT_FILE"
	envTLSKeyFile     = "TLS_KEY_FILE"
	envConsoleEnabled = "CONSOLE_ENABLED"
)

// Defaults for the optional YAML keys.
const (
	defaultRedisPrefix      = "instance"
	defaultMirrorQueueSize  = 1024
	defaultMirrorTimeout    = time.Second
	defaultShutdownDeadline = 10 * time.Second
)

// Config holds the gateway configuration loaded by LoadConfig from environment variables and the optional YAML file.
// HTTPPort is the gateway listener (SERVICE_PORT_HTTP); Token is the shared credential (SERVICE_TOKEN); AdminPort and
// HealthPort are 0 when the admin API or the gRPC health server is disabled; Redis.Addr is empty when the mirror is
// disabled; TLS is used when both files are set.
type Config struct {
	HTTPPort       int
	Token          string
	AdminPort      int
	HealthPort     int
	ConsoleEnabled bool
	TLS            TLSConfig
	Redis          RedisConfig
	Registry       service.RegistryConfig
	Fallback       service.FallbackPage
}

// TLSConfig holds the certificate pair for the gateway listener.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// Enabled reports whether both files are configured.
func (c TLSConfig) Enabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// RedisConfig configures the registry mirror.
type RedisConfig struct {
	Addr      string
	Prefix    string
	QueueSize int
	Timeout   time.Duration
}

// yamlConfig is the root struct for YAML unmarshalling; every key is optional.
type yamlConfig struct {
	Reconnect     yamlReconnect `yaml:"reconnect"`
	DialTimeoutMs int           `yaml:"dial_timeout_ms"`
	Fallback      yamlFallback  `yaml:"fallback"`
	Mirror        yamlMirror    `yaml:"mirror"`
}

// yamlReconnect holds the fixed reconnect delay and the per-instance retry budget.
type yamlReconnect struct {
	DelayMs  int `yaml:"delay_ms"`
	Attempts int `yaml:"attempts"`
}

// yamlFallback is the page served for modules without online instances.
type yamlFallback struct {
	ContentType string `yaml:"content_type"`
	Body        string `yaml:"body"`
}

// yamlMirror tunes the Redis mirror: key prefix, queue size and per-write timeout.
type yamlMirror struct {
	Prefix    string `yaml:"prefix"`
	QueueSize int    `yaml:"queue_size"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// loadYAMLConfig reads the YAML file at path and unmarshals it into yamlConfig.
//
// Parameter path - absolute path to the file (LoadConfig converts CONFIG_PATH to absolute via filepath.Abs).
//
// Returns: (*yamlConfig, nil) on successful read and yaml.Unmarshal; (nil, error) on os.ReadFile or yaml.Unmarshal error.
//
// Called only from LoadConfig.
func loadYAMLConfig(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out yamlConfig
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadConfig builds gateway config from environment variables and the optional YAML at CONFIG_PATH. Reads
// SERVICE_PORT_HTTP (required, 1-65535), SERVICE_TOKEN (required), ADMIN_PORT_HTTP and HEALTH_PORT_GRPC (optional
// ports), REDIS_ADDR (optional), TLS_CERT_FILE/TLS_KEY_FILE (both or neither), CONSOLE_ENABLED (bool, default true).
// YAML keys left unset keep service.DefaultReconnectDelay, service.DefaultReconnectAttempts,
// service.DefaultDialTimeout and service.DefaultFallbackPage.
//
// Parameters: none (source - os.Getenv and file at CONFIG_PATH).
//
// Returns: (*Config, nil) on success; (nil, error) on invalid or missing env values, YAML load/parse error or a
// negative YAML value.
//
// Called only from main at startup.
func LoadConfig() (*Config, error) {
	httpPort, err := parsePort(envHTTPPort, true)
	if err != nil {
		return nil, err
	}
	token := strings.TrimSpace(os.Getenv(envToken))
	if token == "" {
		return nil, fmt.Errorf("%s is required", envToken)
	}
	adminPort, err := parsePort(envAdminPort, false)
	if err != nil {
		return nil, err
	}
	healthPort, err := parsePort(envHealthPort, false)
	if err != nil {
		return nil, err
	}
	for _, p := range []struct {
		name string
		port int
	}{{envAdminPort, adminPort}, {envHealthPort, healthPort}} {
		if p.port != 0 && p.port == httpPort {
			return nil, fmt.Errorf("%s must differ from %s, got %d", p.name, envHTTPPort, p.port)
		}
	}
	if adminPort != 0 && adminPort == healthPort {
		return nil, fmt.Errorf("%s must differ from %s, got %d", envAdminPort, envHealthPort, adminPort)
	}

	tlsCfg := TLSConfig{
		CertFile: strings.TrimSpace(os.Getenv(envTLSCertFile)),
		KeyFile:  strings.TrimSpace(os.Getenv(envTLSKeyFile)),
	}
	if (tlsCfg.CertFile == "") != (tlsCfg.KeyFile == "") {
		return nil, fmt.Errorf("%s and %s must be set together", envTLSCertFile, envTLSKeyFile)
	}

	consoleEnabled := true
	if v := strings.TrimSpace(os.Getenv(envConsoleEnabled)); v != "" {
		consoleEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be a boolean, got %q", envConsoleEnabled, v)
		}
	}

	raw := &yamlConfig{}
	if configPath := strings.TrimSpace(os.Getenv(envConfigPath)); configPath != "" {
		if !filepath.IsAbs(configPath) {
			abs, absErr := filepath.Abs(configPath)
			if absErr != nil {
				return nil, absErr
			}
			configPath = abs
		}
		raw, err = loadYAMLConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
	}

	registry := service.RegistryConfig{
		Credential:        token,
		ReconnectDelay:    service.DefaultReconnectDelay,
		ReconnectAttempts: service.DefaultReconnectAttempts,
		DialTimeout:       service.DefaultDialTimeout,
	}
	if err := overridePositive("reconnect.delay_ms", raw.Reconnect.DelayMs, func(v int) {
		registry.ReconnectDelay = time.Duration(v) * time.Millisecond
	}); err != nil {
		return nil, err
	}
	if err := overridePositive("reconnect.attempts", raw.Reconnect.Attempts, func(v int) {
		registry.ReconnectAttempts = v
	}); err != nil {
		return nil, err
	}
	if err := overridePositive("dial_timeout_ms", raw.DialTimeoutMs, func(v int) {
		registry.DialTimeout = time.Duration(v) * time.Millisecond
	}); err != nil {
		return nil, err
	}

	fallback := service.DefaultFallbackPage
	if ct := strings.TrimSpace(raw.Fallback.ContentType); ct != "" {
		fallback.ContentType = ct
	}
	if raw.Fallback.Body != "" {
		fallback.Body = raw.Fallback.Body
	}

	redisCfg := RedisConfig{
		Addr:      strings.TrimSpace(os.Getenv(envRedisAddr)),
		Prefix:    defaultRedisPrefix,
		QueueSize: defaultMirrorQueueSize,
		Timeout:   defaultMirrorTimeout,
	}
	if p := strings.TrimSpace(raw.Mirror.Prefix); p != "" {
		redisCfg.Prefix = p
	}
	if err := overridePositive("mirror.queue_size", raw.Mirror.QueueSize, func(v int) {
		redisCfg.QueueSize = v
	}); err != nil {
		return nil, err
	}
	if err := overridePositive("mirror.timeout_ms", raw.Mirror.TimeoutMs, func(v int) {
		redisCfg.Timeout = time.Duration(v) * time.Millisecond
	}); err != nil {
		return nil, err
	}

	return &Config{
		HTTPPort:       httpPort,
		Token:          token,
		AdminPort:      adminPort,
		HealthPort:     healthPort,
		ConsoleEnabled: consoleEnabled,
		TLS:            tlsCfg,
		Redis:          redisCfg,
		Registry:       registry,
		Fallback:       fallback,
	}, nil
}

// parsePort reads env as a port. An unset optional port is 0.
//
// Returns: (port, nil) for 1-65535; (0, nil) when unset and not required; (0, error) otherwise.
//
// Called only from LoadConfig.
func parsePort(env string, required bool) (int, error) {
	s := strings.TrimSpace(os.Getenv(env))
	if s == "" {
		if required {
			return 0, fmt.Errorf("%s must be a valid port (1-65535)", env)
		}
		return 0, nil
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid port (1-65535), got %q", env, s)
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%s must be 1-65535, got %d", env, port)
	}
	return port, nil
}

// overridePositive calls set for a positive YAML value; 0 means unset.
func overridePositive(key string, v int, set func(int)) error {
	if v < 0 {
		return fmt.Errorf("%s must be positive, got %d", key, v)
	}
	if v > 0 {
		set(v)
	}
	return nil
}
