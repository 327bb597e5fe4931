// Package config resolves runtime settings from flags, VUELOS_* environment
// variables, an optional .env file and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lalo8115/proyecto-vuelos/internal/llm"
	"github.com/lalo8115/proyecto-vuelos/internal/schema"
)

const (
	EnvPrefix      = "VUELOS"
	configFileName = ".vuelos"
)

// Config is the fully resolved configuration.
type Config struct {
	// Schema is the URI of the model's column list and scaler parameters.
	Schema   string `mapstructure:"schema"`
	Timezone string `mapstructure:"timezone"`

	// DB is the history database path. Empty picks the default location;
	// "off" disables history.
	DB string `mapstructure:"db"`

	Predictor PredictorConfig `mapstructure:"predictor"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Log       LogConfig       `mapstructure:"log"`
	AWS       AWSConfig       `mapstructure:"aws"`
	GCS       GCSConfig       `mapstructure:"gcs"`
}

type PredictorConfig struct {
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
}

type GCSConfig struct {
	Credentials string `mapstructure:"credentials"`
}

// SetDefaults registers every key so AutomaticEnv can resolve it during
// Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("schema", "")
	v.SetDefault("timezone", "Local")
	v.SetDefault("db", "")
	v.SetDefault("predictor.url", "http://localhost:8501")
	v.SetDefault("predictor.model", "delay")
	v.SetDefault("predictor.timeout", 10*time.Second)
	v.SetDefault("predictor.retries", 3)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.language", "Spanish")
	v.SetDefault("llm.timeout", 20*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("aws.region", "")
	v.SetDefault("gcs.credentials", "")
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are skipped; existing variables win.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Init prepares v: defaults, env binding and the config file. cfgFile
// overrides the default $HOME/.vuelos.yaml. A missing default file is not
// an error; a missing explicit file is.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(configFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	var problems []string
	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Predictor.Timeout < 0 {
		problems = append(problems, "predictor.timeout must not be negative")
	}
	if c.Predictor.Retries < 0 {
		problems = append(problems, "predictor.retries must not be negative")
	}
	if err := c.LLMConfig().Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves Timezone; "" and "Local" mean the process zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// HistoryEnabled reports whether predictions are stored.
func (c Config) HistoryEnabled() bool {
	return !strings.EqualFold(c.DB, "off")
}

// LLMConfig builds the advisory provider configuration.
func (c Config) LLMConfig() llm.Config {
	lc := llm.DefaultConfig()
	lc.Provider = c.LLM.Provider
	lc.Model = c.LLM.Model
	lc.APIKey = c.LLM.APIKey
	lc.BaseURL = c.LLM.BaseURL
	if c.LLM.Timeout > 0 {
		lc.Timeout = c.LLM.Timeout
	}
	return lc
}

// SchemaLoader builds a loader using the configured cloud settings.
func (c Config) SchemaLoader() *schema.Loader {
	return &schema.Loader{
		AWSRegion:          c.AWS.Region,
		GCSCredentialsFile: expandHome(c.GCS.Credentials),
	}
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
