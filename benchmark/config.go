package benchmark

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/tinybench/profiler"
	"github.com/nvr-ai/tinybench/stats"
)

// Config represents the run-wide benchmark settings. Obtain one from
// DefaultConfig, ConfigBuilder or LoadConfig; the Runner validates it again
// before measuring.
type Config struct {
	// MinIterations is the sample count every unit reaches regardless of budget.
	MinIterations int `json:"min_iterations" yaml:"min_iterations" mapstructure:"min_iterations"`
	// MaxIterations caps the sample count when a duration budget is set. Zero
	// leaves the count unbounded.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations"`
	// DurationBudget is the total time shared by all units. Zero disables the
	// warm-up phase and budgeting.
	DurationBudget time.Duration `json:"duration_budget" yaml:"duration_budget" mapstructure:"duration_budget"`
	// WarmUpIterations is the number of warm-up calls per unit used to split
	// the budget.
	WarmUpIterations int `json:"warm_up_iterations" yaml:"warm_up_iterations" mapstructure:"warm_up_iterations"`
	// BatchSize is the number of operation calls per measured sample.
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`
	// MeasureMemory records the allocation delta of every sample.
	MeasureMemory bool `json:"measure_memory" yaml:"measure_memory" mapstructure:"measure_memory"`
	// ResultSubfolders places exported files in one folder per owner.
	ResultSubfolders bool `json:"result_subfolders" yaml:"result_subfolders" mapstructure:"result_subfolders"`
	// Aggregation names the comparison statistic: "pNN", "median" or "best".
	Aggregation string `json:"aggregation" yaml:"aggregation" mapstructure:"aggregation"`

	// Logger receives human-readable progress lines.
	Logger func(string) `json:"-" yaml:"-" mapstructure:"-"`
	// Reducer overrides Aggregation with a custom statistic.
	Reducer stats.Reducer `json:"-" yaml:"-" mapstructure:"-"`
	// Settle runs before measuring and before every memory sample. Nil means
	// profiler.Settle.
	Settle profiler.SettleFunc `json:"-" yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns the default benchmark configuration.
func DefaultConfig() Config {
	return Config{
		MinIterations:    100,
		MaxIterations:    10000,
		WarmUpIterations: 100,
		BatchSize:        5,
		ResultSubfolders: true,
		Aggregation:      "p50",
	}
}

// Validate checks every invariant of the configuration.
func (c Config) Validate() error {
	if c.MinIterations < 1 {
		return configErrorf("min iterations %d must be at least 1", c.MinIterations)
	}
	if c.MaxIterations < 0 {
		return configErrorf("max iterations %d must not be negative", c.MaxIterations)
	}
	if c.MaxIterations > 0 && c.MaxIterations < c.MinIterations {
		return configErrorf("max iterations %d is below min iterations %d", c.MaxIterations, c.MinIterations)
	}
	if c.BatchSize < 1 {
		return configErrorf("batch size %d must be at least 1", c.BatchSize)
	}
	if c.DurationBudget < 0 {
		return configErrorf("duration budget %s must not be negative", c.DurationBudget)
	}
	if c.DurationBudget > 0 && c.WarmUpIterations < 1 {
		return configErrorf("warm-up iterations %d must be at least 1 with a duration budget", c.WarmUpIterations)
	}
	if c.Reducer == nil {
		if _, err := stats.ParseReducer(c.Aggregation); err != nil {
			return configErrorf("aggregation: %v", err)
		}
	}
	return nil
}

// AggregateReducer returns the statistic comparison views use.
func (c Config) AggregateReducer() stats.Reducer {
	if c.Reducer != nil {
		return c.Reducer
	}
	r, err := stats.ParseReducer(c.Aggregation)
	if err != nil {
		return stats.DefaultReducer()
	}
	return r
}

// HasBudget reports whether a duration budget is configured.
func (c Config) HasBudget() bool {
	return c.DurationBudget > 0
}

// Save writes the serialisable part of the configuration as YAML.
func (c Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. TINYBENCH_MIN_ITERATIONS.
const EnvPrefix = "TINYBENCH"

// NewViper returns a viper instance carrying the configuration defaults and
// environment bindings.
func NewViper() *viper.Viper {
	v := viper.New()
	SetViperDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetViperDefaults registers every config key with its default value.
func SetViperDefaults(v *viper.Viper, c Config) {
	v.SetDefault("min_iterations", c.MinIterations)
	v.SetDefault("max_iterations", c.MaxIterations)
	v.SetDefault("duration_budget", c.DurationBudget)
	v.SetDefault("warm_up_iterations", c.WarmUpIterations)
	v.SetDefault("batch_size", c.BatchSize)
	v.SetDefault("measure_memory", c.MeasureMemory)
	v.SetDefault("result_subfolders", c.ResultSubfolders)
	v.SetDefault("aggregation", c.Aggregation)
}

// DecodeConfig builds and validates a Config from the values held by v.
func DecodeConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig loads a configuration file (YAML, JSON or TOML by extension)
// with TINYBENCH_* environment overrides.
func LoadConfig(filename string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(filename)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config file %s", filename)
	}
	return DecodeConfig(v)
}

// ConfigBuilder assembles a Config; Build validates it.
type ConfigBuilder struct {
	cfg Config
}

// NewConfigBuilder creates a builder starting from DefaultConfig.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: DefaultConfig()}
}

// WithMinIterations sets the minimum sample count per unit.
func (b *ConfigBuilder) WithMinIterations(n int) *ConfigBuilder {
	b.cfg.MinIterations = n
	return b
}

// WithMaxIterations sets the maximum sample count per unit; zero removes the cap.
func (b *ConfigBuilder) WithMaxIterations(n int) *ConfigBuilder {
	b.cfg.MaxIterations = n
	return b
}

// WithDurationBudget sets the total time budget and the warm-up calls per unit
// used to split it.
func (b *ConfigBuilder) WithDurationBudget(total time.Duration, warmUpIterations int) *ConfigBuilder {
	b.cfg.DurationBudget = total
	b.cfg.WarmUpIterations = warmUpIterations
	return b
}

// WithBatchSize sets the number of calls per sample.
func (b *ConfigBuilder) WithBatchSize(n int) *ConfigBuilder {
	b.cfg.BatchSize = n
	return b
}

// WithMemoryMeasurement toggles allocation tracking.
func (b *ConfigBuilder) WithMemoryMeasurement(enabled bool) *ConfigBuilder {
	b.cfg.MeasureMemory = enabled
	return b
}

// WithResultSubfolders toggles per-owner export folders.
func (b *ConfigBuilder) WithResultSubfolders(enabled bool) *ConfigBuilder {
	b.cfg.ResultSubfolders = enabled
	return b
}

// WithAggregation selects the comparison statistic by name.
func (b *ConfigBuilder) WithAggregation(name string) *ConfigBuilder {
	b.cfg.Aggregation = name
	return b
}

// WithReducer overrides the comparison statistic.
func (b *ConfigBuilder) WithReducer(r stats.Reducer) *ConfigBuilder {
	b.cfg.Reducer = r
	return b
}

// WithLogger sets the progress callback.
func (b *ConfigBuilder) WithLogger(fn func(string)) *ConfigBuilder {
	b.cfg.Logger = fn
	return b
}

// WithSettle sets the pre-measurement settle hook.
func (b *ConfigBuilder) WithSettle(fn profiler.SettleFunc) *ConfigBuilder {
	b.cfg.Settle = fn
	return b
}

// Build validates and returns the configuration.
func (b *ConfigBuilder) Build() (Config, error) {
	if err := b.cfg.Validate(); err != nil {
		return Config{}, err
	}
	return b.cfg, nil
}

// MustBuild is Build that panics on an invalid configuration.
func (b *ConfigBuilder) MustBuild() Config {
	cfg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cfg
}
