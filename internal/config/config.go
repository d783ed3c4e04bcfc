package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/teamline/teamline/internal/duration"
	"go.uber.org/zap/zapcore"
)

type ServerConfig struct {
	Port             int           `mapstructure:"port"`
	GracefulShutdown time.Duration `mapstructure:"graceful-shutdown"`
	ReadTimeout      time.Duration `mapstructure:"read-timeout"`
	WriteTimeout     time.Duration `mapstructure:"write-timeout"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type JWTConfig struct {
	Secret      string        `mapstructure:"secret" validate:"required"`
	SessionTime time.Duration `mapstructure:"session-time"`
}

type DBConfig struct {
	DataSource  string `mapstructure:"data-source" validate:"required"`
	PrepareStmt bool   `mapstructure:"prepare-stmt"`
	LogLevel    string `mapstructure:"log-level"`
	Pool        struct {
		Enable             bool          `mapstructure:"enable"`
		MaxOpenConnections int           `mapstructure:"max-open-connections"`
		MaxIdleConnections int           `mapstructure:"max-idle-connections"`
		MaxLifetime        time.Duration `mapstructure:"max-lifetime"`
	} `mapstructure:"pool"`
}

type CacheConfig struct {
	MaxSize   int    `mapstructure:"max-size"`
	RedisAddr string `mapstructure:"redis-addr"`
	RedisPass string `mapstructure:"redis-pass"`
}

type StorageConfig struct {
	Bucket    string `mapstructure:"bucket" validate:"required"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access-key"`
	SecretKey string `mapstructure:"secret-key"`
	PathStyle bool   `mapstructure:"path-style"`
}

type UploadConfig struct {
	MaxFiles    int           `mapstructure:"max-files" validate:"gt=0"`
	MaxFileSize int64         `mapstructure:"max-file-size" validate:"gt=0"`
	Retention   time.Duration `mapstructure:"retention"`
	Storage     StorageConfig `mapstructure:"storage"`
}

type CronJobConfig struct {
	Enable                   bool          `mapstructure:"enable"`
	CleanUploadsInterval     time.Duration `mapstructure:"clean-uploads-interval"`
	DispatchInterval         time.Duration `mapstructure:"dispatch-interval"`
	PrunePreferencesInterval time.Duration `mapstructure:"prune-preferences-interval"`
}

type ServerCmdConfig struct {
	Server   ServerConfig  `mapstructure:"server"`
	Log      LoggingConfig `mapstructure:"log"`
	JWT      JWTConfig     `mapstructure:"jwt"`
	DB       DBConfig      `mapstructure:"db"`
	Cache    CacheConfig   `mapstructure:"cache"`
	Uploads  UploadConfig  `mapstructure:"uploads"`
	CronJobs CronJobConfig `mapstructure:"cronjobs"`
}

type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

func stringToDurationHook() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		str, ok := data.(string)
		if !ok {
			return data, nil
		}
		return duration.ParseDuration(str)
	}
}

// Initialize wires the config file, TEAMLINE_* environment variables and the
// command's flags into the loader, in ascending precedence.
func (l *Loader) Initialize(cmd *cobra.Command) error {
	l.v.SetConfigType("toml")

	cfgFile := cmd.Flags().Lookup("config").Value.String()
	if cfgFile != "" {
		l.v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error getting home directory: %w", err)
		}
		l.v.AddConfigPath(filepath.Join(home, ".teamline"))
		l.v.AddConfigPath(".")
		l.v.SetConfigName("config")
	}

	l.v.SetEnvPrefix("teamline")
	l.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	l.v.AutomaticEnv()

	var bindErr error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Name == "config" || flag.Name == "help" {
			return
		}
		if err := l.v.BindPFlag(configPath(flag.Name), flag); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return fmt.Errorf("error binding flags: %w", bindErr)
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// configPath maps a flag name onto its nested config key, so
// "uploads-max-files" overrides the same setting as [uploads] max-files in
// the file and TEAMLINE_UPLOADS_MAX_FILES in the environment.
func configPath(flagName string) string {
	parts := strings.SplitN(flagName, "-", 2)
	if len(parts) == 1 {
		return flagName
	}
	section, rest := parts[0], parts[1]
	switch {
	case section == "db" && strings.HasPrefix(rest, "pool-"):
		return "db.pool." + strings.TrimPrefix(rest, "pool-")
	case section == "uploads" && strings.HasPrefix(rest, "storage-"):
		return "uploads.storage." + strings.TrimPrefix(rest, "storage-")
	}
	return section + "." + rest
}

func (l *Loader) Load(cfg interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(stringToDurationHook()),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(l.v.AllSettings()); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func Validate(cfg *ServerCmdConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func AddServerFlags(flags *pflag.FlagSet, config *ServerCmdConfig) {
	flags.StringP("config", "c", "", "Config file path (default $HOME/.teamline/config.toml)")

	// Server
	flags.IntVar(&config.Server.Port, "server-port", 8080, "Server port")
	duration.DurationVar(flags, &config.Server.GracefulShutdown, "server-graceful-shutdown", 15*time.Second, "Graceful shutdown timeout")
	duration.DurationVar(flags, &config.Server.ReadTimeout, "server-read-timeout", time.Minute, "Server read timeout")
	duration.DurationVar(flags, &config.Server.WriteTimeout, "server-write-timeout", time.Minute, "Server write timeout")

	// Log
	flags.StringVar(&config.Log.Level, "log-level", zapcore.InfoLevel.String(), "Logging level")
	flags.StringVar(&config.Log.File, "log-file", "", "Logging file path")

	// JWT
	flags.StringVar(&config.JWT.Secret, "jwt-secret", "", "JWT signing secret")
	duration.DurationVar(flags, &config.JWT.SessionTime, "jwt-session-time", 30*24*time.Hour, "Session validity")

	// DB
	flags.StringVar(&config.DB.DataSource, "db-data-source", "", "Database connection string")
	flags.StringVar(&config.DB.LogLevel, "db-log-level", zapcore.WarnLevel.String(), "Database log level")
	flags.BoolVar(&config.DB.PrepareStmt, "db-prepare-stmt", true, "Enable prepared statements")
	flags.BoolVar(&config.DB.Pool.Enable, "db-pool-enable", true, "Enable database pool")
	flags.IntVar(&config.DB.Pool.MaxOpenConnections, "db-pool-max-open-connections", 25, "Database max open connections")
	flags.IntVar(&config.DB.Pool.MaxIdleConnections, "db-pool-max-idle-connections", 25, "Database max idle connections")
	duration.DurationVar(flags, &config.DB.Pool.MaxLifetime, "db-pool-max-lifetime", 10*time.Minute, "Database max connection lifetime")

	// Cache
	flags.IntVar(&config.Cache.MaxSize, "cache-max-size", 8*1024*1024, "Memory cache size in bytes")
	flags.StringVar(&config.Cache.RedisAddr, "cache-redis-addr", "", "Redis address, memory cache when empty")
	flags.StringVar(&config.Cache.RedisPass, "cache-redis-pass", "", "Redis password")

	// Uploads
	flags.IntVar(&config.Uploads.MaxFiles, "uploads-max-files", 10, "Max uploads pending or attached per channel")
	flags.Int64Var(&config.Uploads.MaxFileSize, "uploads-max-file-size", 50*1024*1024, "Per-file size cap in bytes")
	duration.DurationVar(flags, &config.Uploads.Retention, "uploads-retention", 7*24*time.Hour, "How long unfinished uploads are kept")
	flags.StringVar(&config.Uploads.Storage.Bucket, "uploads-storage-bucket", "", "Object storage bucket")
	flags.StringVar(&config.Uploads.Storage.Region, "uploads-storage-region", "auto", "Object storage region")
	flags.StringVar(&config.Uploads.Storage.Endpoint, "uploads-storage-endpoint", "", "Object storage endpoint, AWS default when empty")
	flags.StringVar(&config.Uploads.Storage.AccessKey, "uploads-storage-access-key", "", "Object storage access key")
	flags.StringVar(&config.Uploads.Storage.SecretKey, "uploads-storage-secret-key", "", "Object storage secret key")
	flags.BoolVar(&config.Uploads.Storage.PathStyle, "uploads-storage-path-style", false, "Use path-style object storage addressing")

	// Cron
	flags.BoolVar(&config.CronJobs.Enable, "cronjobs-enable", true, "Enable background jobs")
	duration.DurationVar(flags, &config.CronJobs.CleanUploadsInterval, "cronjobs-clean-uploads-interval", time.Hour, "Interval for expired upload cleanup")
	duration.DurationVar(flags, &config.CronJobs.DispatchInterval, "cronjobs-dispatch-interval", time.Minute, "Interval for scheduled post dispatch")
	duration.DurationVar(flags, &config.CronJobs.PrunePreferencesInterval, "cronjobs-prune-preferences-interval", 12*time.Hour, "Interval for stale schedule preference pruning")
}
