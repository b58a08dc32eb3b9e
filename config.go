package gospy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mickamy/gospy/internal/logging"
)

const (
	defaultTruncateAt   = 100
	defaultTickBatch    = 80
	defaultTickInterval = 5 * time.Minute
)

// Config defines the main configuration options for gospy.
type Config struct {
	BurrowDeep   bool          // pass the proxy as Receiver to bound operations
	TruncateAt   int           // max characters of a value in logs and reports (default 100, negative disables)
	TickBatch    int           // progress ticks per line for the default reporter (default 80)
	TickInterval time.Duration // timestamp interval for call ticks of the default reporter (default 5m)
	Reporter     Reporter      // defaults to a console reporter on stdout
	Logger       *zap.Logger   // defaults to a no-op logger
	Metrics      *Metrics      // optional Prometheus metrics
	Tracer       trace.Tracer  // defaults to the global OpenTelemetry tracer
}

type fileConfig struct {
	BurrowDeep       bool          `yaml:"burrow_deep"`
	TruncateAt       int           `yaml:"truncate_at"`
	TickBatch        int           `yaml:"tick_batch"`
	TickInterval     time.Duration `yaml:"tick_interval"`
	LogLevel         string        `yaml:"log_level"`
	LogFormat        string        `yaml:"log_format"`
	MetricsNamespace string        `yaml:"metrics_namespace"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("gospy: failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML configuration. Unknown keys are rejected.
// log_level builds a zap logger and metrics_namespace enables metrics.
func ParseConfig(data []byte) (Config, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("gospy: failed to parse config: %w", err)
	}
	if fc.TickBatch < 0 {
		return Config{}, fmt.Errorf("gospy: tick_batch must not be negative, got %d", fc.TickBatch)
	}
	if fc.TickInterval < 0 {
		return Config{}, fmt.Errorf("gospy: tick_interval must not be negative, got %s", fc.TickInterval)
	}

	cfg := Config{
		BurrowDeep:   fc.BurrowDeep,
		TruncateAt:   fc.TruncateAt,
		TickBatch:    fc.TickBatch,
		TickInterval: fc.TickInterval,
	}
	if fc.LogLevel != "" || fc.LogFormat != "" {
		l, err := logging.New(logging.Config{Level: fc.LogLevel, Format: fc.LogFormat})
		if err != nil {
			return Config{}, err
		}
		cfg.Logger = l
	}
	if fc.MetricsNamespace != "" {
		cfg.Metrics = NewMetrics(fc.MetricsNamespace)
	}
	return cfg, nil
}
