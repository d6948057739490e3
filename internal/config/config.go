package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mcules/motor-speed/internal/artifact"
)

// Keys. Each can be overridden by an environment variable with the
// MOTORSPEED_ prefix and dots replaced by underscores, e.g.
// MOTORSPEED_HTTP_ADDR.
const (
	KeyAppName          = "app.name"
	KeyLogLevel         = "log.level"
	KeyHTTPAddr         = "http.addr"
	KeyHTTPCORSOrigin   = "http.cors_origin"
	KeyGRPCAddr         = "grpc.addr"
	KeyArtifactsDir     = "artifacts.dir"
	KeyModelPath        = "artifacts.model"
	KeyScalerPath       = "artifacts.scaler"
	KeyTargetScalerPath = "artifacts.target_scaler"
	KeySchemaPath       = "artifacts.schema"
	KeyLedgerPath       = "ledger.path"
	KeyMemoBytes        = "memo.size_bytes"
	KeyActivitySize     = "activity.size"
	KeyLatencyAlpha     = "metrics.latency_alpha"
	KeyReadHeader       = "http.read_header_timeout"
)

const envPrefix = "MOTORSPEED"

type Config struct {
	AppName           string
	LogLevel          string
	HTTPAddr          string
	CORSOrigin        string
	GRPCAddr          string
	Artifacts         artifact.Paths
	LedgerPath        string
	MemoBytes         int
	ActivitySize      int
	LatencyAlpha      float64
	ReadHeaderTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAppName, "motor-speed")
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyHTTPCORSOrigin, "*")
	v.SetDefault(KeyGRPCAddr, ":9090")
	v.SetDefault(KeyArtifactsDir, ".")
	v.SetDefault(KeyModelPath, "random_forest_model_df1.json")
	v.SetDefault(KeyScalerPath, "scaler_df1.json")
	v.SetDefault(KeyTargetScalerPath, "target_scaler_df1.json")
	v.SetDefault(KeySchemaPath, "feature_schema_df1.yaml")
	v.SetDefault(KeyLedgerPath, "artifacts.db")
	v.SetDefault(KeyMemoBytes, 1<<20)
	v.SetDefault(KeyActivitySize, 300)
	v.SetDefault(KeyLatencyAlpha, 0.2)
	v.SetDefault(KeyReadHeader, 5*time.Second)
}

// New returns a viper instance with defaults and environment overrides.
// When file is not empty it is read as the config file.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return v, nil
}

// Load builds a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		AppName:    strings.TrimSpace(v.GetString(KeyAppName)),
		LogLevel:   strings.ToUpper(strings.TrimSpace(v.GetString(KeyLogLevel))),
		HTTPAddr:   v.GetString(KeyHTTPAddr),
		CORSOrigin: v.GetString(KeyHTTPCORSOrigin),
		GRPCAddr:   v.GetString(KeyGRPCAddr),
		Artifacts: artifact.Paths{
			Dir:          v.GetString(KeyArtifactsDir),
			Model:        v.GetString(KeyModelPath),
			Scaler:       v.GetString(KeyScalerPath),
			TargetScaler: v.GetString(KeyTargetScalerPath),
			Schema:       v.GetString(KeySchemaPath),
		},
		LedgerPath:        v.GetString(KeyLedgerPath),
		MemoBytes:         v.GetInt(KeyMemoBytes),
		ActivitySize:      v.GetInt(KeyActivitySize),
		LatencyAlpha:      v.GetFloat64(KeyLatencyAlpha),
		ReadHeaderTimeout: v.GetDuration(KeyReadHeader),
	}
	return c, c.validate()
}

func (c Config) validate() error {
	var errs []error
	if c.AppName == "" {
		errs = append(errs, errors.New("app.name is empty"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http.addr is empty"))
	}
	if c.MemoBytes < 0 {
		errs = append(errs, fmt.Errorf("memo.size_bytes must not be negative, got %d", c.MemoBytes))
	}
	if c.LatencyAlpha <= 0 || c.LatencyAlpha >= 1 {
		errs = append(errs, fmt.Errorf("metrics.latency_alpha must be in (0, 1), got %v", c.LatencyAlpha))
	}
	switch c.LogLevel {
	case "DEBUG", "INFO", "WARN", "ERROR", "DISABLED":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of DEBUG, INFO, WARN, ERROR, DISABLED", c.LogLevel))
	}
	return errors.Join(errs...)
}
