package devframe

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by LoadConfig,
// e.g. DEVFRAME_MEMORY_LIMIT_BYTES or DEVFRAME_LOG_LEVEL.
const EnvPrefix = "DEVFRAME"

// Config is the file/environment form of the session options.
type Config struct {
	MemoryLimitBytes         int64     `mapstructure:"memory_limit_bytes"`
	GCThresholdBytes         int64     `mapstructure:"gc_threshold_bytes"`
	TransferLimitBytesPerSec int64     `mapstructure:"transfer_limit_bytes_per_sec"`
	DeviceCapacityBytes      int64     `mapstructure:"device_capacity_bytes"`
	Parallelism              int       `mapstructure:"parallelism"`
	Log                      LogConfig `mapstructure:"log"`
}

// LogConfig selects the session logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error or off.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Level: "off", Format: "text"},
	}
}

// LoadConfig reads the configuration from path (any format viper supports)
// and DEVFRAME_* environment variables. Environment values take precedence.
// An empty path reads the environment only.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decode config: %w", ErrArgument, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("memory_limit_bytes", cfg.MemoryLimitBytes)
	v.SetDefault("gc_threshold_bytes", cfg.GCThresholdBytes)
	v.SetDefault("transfer_limit_bytes_per_sec", cfg.TransferLimitBytesPerSec)
	v.SetDefault("device_capacity_bytes", cfg.DeviceCapacityBytes)
	v.SetDefault("parallelism", cfg.Parallelism)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.MemoryLimitBytes < 0 {
		return fmt.Errorf("%w: negative memory limit %d", ErrArgument, c.MemoryLimitBytes)
	}
	if c.TransferLimitBytesPerSec < 0 {
		return fmt.Errorf("%w: negative transfer limit %d", ErrArgument, c.TransferLimitBytesPerSec)
	}
	if c.DeviceCapacityBytes < 0 {
		return fmt.Errorf("%w: negative device capacity %d", ErrArgument, c.DeviceCapacityBytes)
	}
	if _, _, err := c.Log.parse(); err != nil {
		return err
	}
	return nil
}

// Logger builds the logger described by c. A level of "off" yields
// NoopLogger.
func (c LogConfig) Logger() (*Logger, error) {
	level, off, err := c.parse()
	if err != nil {
		return nil, err
	}
	if off {
		return NoopLogger(), nil
	}
	if strings.EqualFold(c.Format, "json") {
		return NewJSONLogger(level), nil
	}
	return NewTextLogger(level), nil
}

func (c LogConfig) parse() (level slog.Level, off bool, err error) {
	switch strings.ToLower(c.Format) {
	case "", "text", "json":
	default:
		return 0, false, fmt.Errorf("%w: unknown log format %q", ErrArgument, c.Format)
	}
	if c.Level == "" || strings.EqualFold(c.Level, "off") {
		return 0, true, nil
	}
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, false, fmt.Errorf("%w: log level: %w", ErrArgument, err)
	}
	return level, false, nil
}

// Options converts c into session options.
func (c Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	logger, err := c.Log.Logger()
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithLogger(logger),
		WithMemoryLimit(c.MemoryLimitBytes),
		WithGCThreshold(c.GCThresholdBytes),
		WithTransferLimit(c.TransferLimitBytesPerSec),
		WithParallelism(c.Parallelism),
	}
	if c.DeviceCapacityBytes > 0 {
		opts = append(opts, WithRuntime(newCappedRuntime(c.DeviceCapacityBytes)))
	}
	return opts, nil
}
