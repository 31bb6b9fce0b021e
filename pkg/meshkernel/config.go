package meshkernel

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config collects the knobs of a Manager. Parameter defaults are applied by
// callers that want them; sessions never read them implicitly.
type Config struct {
	// Projection is used by sessions created without WithProjection.
	Projection Projection `yaml:"projection" json:"projection"`
	// LogLevel is a zap level name for logging.NewZapLevel. The manager
	// itself logs through whatever WithLogger supplied.
	LogLevel string `yaml:"log_level" json:"log_level"`
	// MaxParallel bounds Manager.Parallel.
	MaxParallel   int    `yaml:"max_parallel" json:"max_parallel"`
	MetricsPrefix string `yaml:"metrics_prefix" json:"metrics_prefix"`

	Orthogonalization OrthogonalizationParameters `yaml:"orthogonalization" json:"orthogonalization"`
	UniformGrid       MakeGridParameters          `yaml:"uniform_grid" json:"uniform_grid"`
}

// DefaultConfig returns a Cartesian configuration at info level with one
// parallel slot per CPU.
func DefaultConfig() Config {
	return Config{
		Projection:        ProjectionCartesian,
		LogLevel:          "info",
		MaxParallel:       runtime.NumCPU(),
		MetricsPrefix:     "meshkernel",
		Orthogonalization: DefaultOrthogonalizationParameters(),
		UniformGrid:       DefaultMakeGridParameters(),
	}
}

// Validate reports every problem in c at once.
func (c Config) Validate() error {
	var err error
	if !c.Projection.valid() {
		err = multierr.Append(err, validationf("config", "unknown projection %d", c.Projection))
	}
	if _, lerr := zapcore.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, &Error{Kind: KindValidation, Op: "config", Detail: "log_level", Cause: lerr})
	}
	if c.MaxParallel < 1 {
		err = multierr.Append(err, validationf("config", "max_parallel %d must be at least 1", c.MaxParallel))
	}
	err = multierr.Append(err, c.Orthogonalization.Validate())
	err = multierr.Append(err, c.UniformGrid.Validate())
	return err
}

// LoadConfig reads a YAML (.yaml, .yml) or JSON (.json) file on top of
// DefaultConfig. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	absPath, err := SecurePath(path)
	if err != nil {
		return Config{}, fmt.Errorf("secure path: %w", err)
	}
	data, err := os.ReadFile(absPath) // #nosec G304 -- absPath validated by SecurePath
	if err != nil {
		return Config{}, fmt.Errorf("read file: %w", err)
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(absPath)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal YAML: %w", err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal JSON: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SecurePath validates that a file path doesn't escape the working directory.
func SecurePath(path string) (string, error) {
	clean := filepath.Clean(path)
	absPath, err := filepath.Abs(clean)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	base, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	rel, err := filepath.Rel(base, absPath)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes working directory", path)
	}
	return absPath, nil
}
