package config

import (
	"log/slog"
	"net"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/lvs-monitor/internal/ipvs"
	"github.com/angeloszaimis/lvs-monitor/internal/ports"
	"github.com/angeloszaimis/lvs-monitor/internal/scheduler"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type VirtualConfig struct {
	Address string `mapstructure:"address"`
}

type ServicesConfig struct {
	TCP []string `mapstructure:"tcp"`
	UDP []string `mapstructure:"udp"`
}

type MonitorConfig struct {
	LossThreshold int    `mapstructure:"loss_threshold"`
	WindowSamples int    `mapstructure:"window_samples"`
	Interval      string `mapstructure:"interval"`
	ProbeTimeout  string `mapstructure:"probe_timeout"`
	Scheduler     string `mapstructure:"scheduler"`
	Driver        string `mapstructure:"driver"`
}

type IpvsadmConfig struct {
	Path    string `mapstructure:"path"`
	Retries int    `mapstructure:"retries"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Virtual  VirtualConfig  `mapstructure:"virtual"`
	Services ServicesConfig `mapstructure:"services"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Ipvsadm  IpvsadmConfig  `mapstructure:"ipvsadm"`
	Backends []string       `mapstructure:"backends"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.enabled", true)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("monitor.loss_threshold", 5)
	viper.SetDefault("monitor.window_samples", 60)
	viper.SetDefault("monitor.interval", "1s")
	viper.SetDefault("monitor.probe_timeout", "1s")
	viper.SetDefault("monitor.scheduler", ipvs.RoundRobin)
	viper.SetDefault("monitor.driver", scheduler.ModeConcurrent)
	viper.SetDefault("ipvsadm.path", "ipvsadm")
	viper.SetDefault("ipvsadm.retries", 1)
	viper.SetDefault("logging.level", LogLevelInfo)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Error("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Virtual,
			validation.Required,
			validation.By(func(value interface{}) error {
				vc, ok := value.(VirtualConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a VirtualConfig")
				}
				return validation.ValidateStruct(&vc,
					validation.Field(&vc.Address,
						validation.Required,
						is.Host,
					),
				)
			}),
		),
		validation.Field(&c.Backends,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.Required, is.Host),
		),
		validation.Field(&c.Services,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServicesConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServicesConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.TCP, validation.By(validatePortSpec)),
					validation.Field(&sc.UDP, validation.By(validatePortSpec)),
				)
			}),
		),
		validation.Field(&c.Monitor,
			validation.Required,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MonitorConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MonitorConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.LossThreshold,
						validation.Min(0),
						validation.Max(100),
					),
					validation.Field(&mc.WindowSamples,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&mc.Interval,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&mc.ProbeTimeout,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&mc.Scheduler,
						validation.Required,
						validation.In(schedulerNames()...),
					),
					validation.Field(&mc.Driver,
						validation.Required,
						validation.In(scheduler.ModeConcurrent, scheduler.ModeSequential),
					),
				)
			}),
		),
		validation.Field(&c.Ipvsadm,
			validation.Required,
			validation.By(func(value interface{}) error {
				ic, ok := value.(IpvsadmConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an IpvsadmConfig")
				}
				return validation.ValidateStruct(&ic,
					validation.Field(&ic.Path,
						validation.Required,
					),
					validation.Field(&ic.Retries,
						validation.Required,
						validation.Min(1),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := time.ParseDuration(durationStr); err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 1s, 500ms)")
	}

	return nil
}

// validatePortSpec rejects tokens the expander cannot parse; expansion
// itself happens once at startup.
func validatePortSpec(value interface{}) error {
	tokens, ok := value.([]string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a list of port tokens")
	}

	if _, err := ports.Expand(tokens); err != nil {
		return validation.NewError("validation_invalid_port_spec", err.Error())
	}

	return nil
}

func schedulerNames() []interface{} {
	names := ipvs.Schedulers()
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}
