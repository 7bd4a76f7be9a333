// File: internal/config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kitty-webhook/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "CONFIG_PATH"
	EnvPort       = "PORT"

	DefaultPath          = "config.json"
	DefaultPort          = 5000
	DefaultProbeInterval = 30 * time.Minute
)

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // trace|debug|info|warn|error
	Format string `json:"format" yaml:"format"` // json|console
	File   string `json:"file" yaml:"file"`     // optional extra log file, appended to
}

type HTTPConfig struct {
	Port            int      `json:"port" yaml:"port"`
	ReadTimeout     Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration `json:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type ProberConfig struct {
	Interval Duration `json:"interval" yaml:"interval"`
	Timeout  Duration `json:"timeout" yaml:"timeout"`
}

type TelegramConfig struct {
	APIEndpoint string   `json:"api_endpoint" yaml:"api_endpoint"` // format string, e.g. https://api.telegram.org/bot%s/%s
	SendTimeout Duration `json:"send_timeout" yaml:"send_timeout"`
	DryRun      bool     `json:"dry_run" yaml:"dry_run"` // log messages instead of sending them
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// Config is loaded once at startup and treated as read-only afterwards.
type Config struct {
	TelegramBotToken      string `json:"telegram_bot_token" yaml:"telegram_bot_token"`
	TelegramChatID        ChatID `json:"telegram_chat_id" yaml:"telegram_chat_id"`
	FileURL               string `json:"s3_file_url" yaml:"s3_file_url"`
	RazorpayKeyID         string `json:"razorpay_key_id" yaml:"razorpay_key_id"`
	RazorpayKeySecret     string `json:"razorpay_key_secret" yaml:"razorpay_key_secret"`
	RazorpayWebhookSecret string `json:"razorpay_webhook_secret" yaml:"razorpay_webhook_secret"`

	Log      LogConfig      `json:"log" yaml:"log"`
	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	Prober   ProberConfig   `json:"prober" yaml:"prober"`
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// Path returns the config file location, honoring CONFIG_PATH.
func Path() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads and validates the config file at path. Files ending in .yaml or .yml
// are decoded as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read config: %w", domain.ErrConfig, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("%w: parse config: %w", domain.ErrConfig, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%w: parse config: %w", domain.ErrConfig, err)
		}
		if dec.More() {
			return nil, fmt.Errorf("%w: parse config: trailing data after document", domain.ErrConfig)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides file values with environment variables. Only PORT is honored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	raw := strings.TrimSpace(getenv(EnvPort))
	if raw == "" {
		return nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("%w: %s=%q is not a valid port", domain.ErrConfig, EnvPort, raw)
	}
	c.HTTP.Port = port
	return nil
}

// Validate checks that every required key is present and non-empty.
func (c *Config) Validate() error {
	required := []struct {
		key, val string
	}{
		{"telegram_bot_token", c.TelegramBotToken},
		{"telegram_chat_id", c.TelegramChatID.String()},
		{"s3_file_url", c.FileURL},
		{"razorpay_key_id", c.RazorpayKeyID},
		{"razorpay_key_secret", c.RazorpayKeySecret},
		{"razorpay_webhook_secret", c.RazorpayWebhookSecret},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required values: %s", domain.ErrConfig, strings.Join(missing, ", "))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: http.port %d out of range", domain.ErrConfig, c.HTTP.Port)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultPort
	}
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = Duration(15 * time.Second)
	}
	if c.HTTP.WriteTimeout <= 0 {
		c.HTTP.WriteTimeout = Duration(30 * time.Second)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Prober.Interval <= 0 {
		c.Prober.Interval = Duration(DefaultProbeInterval)
	}
	if c.Prober.Timeout <= 0 {
		c.Prober.Timeout = Duration(30 * time.Second)
	}
	if c.Telegram.SendTimeout <= 0 {
		c.Telegram.SendTimeout = Duration(15 * time.Second)
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// ChatID is a Telegram chat reference. Numeric ids and "@channel" usernames are both
// accepted, as a JSON number or string.
type ChatID string

func (c ChatID) String() string { return strings.TrimSpace(string(c)) }

func (c *ChatID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = ChatID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("telegram_chat_id: %w", err)
	}
	*c = ChatID(n.String())
	return nil
}

func (c *ChatID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("telegram_chat_id: expected scalar, got kind %d", node.Kind)
	}
	*c = ChatID(strings.TrimSpace(node.Value))
	return nil
}

// Duration accepts Go duration strings ("30m") or a number of seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return d.parse(s)
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration: expected scalar, got kind %d", node.Kind)
	}
	if secs, err := strconv.ParseFloat(node.Value, 64); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	return d.parse(node.Value)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	*d = Duration(v)
	return nil
}
