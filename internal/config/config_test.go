package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, file string) *viper.Viper {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	v := viper.New()
	require.NoError(t, Init(v, file))
	return v
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8501", c.Predictor.URL)
	assert.Equal(t, "delay", c.Predictor.Model)
	assert.Equal(t, 10*time.Second, c.Predictor.Timeout)
	assert.Equal(t, 3, c.Predictor.Retries)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "info", c.Log.Level)
	assert.True(t, c.HistoryEnabled())
	assert.False(t, c.LLMConfig().Enabled())

	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vuelos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schema: s3://models/delay/schema.json
timezone: America/Mexico_City
db: "off"
predictor:
  url: http://tfs:8501
  timeout: 2s
llm:
  provider: mock
`), 0o644))

	c, err := Load(newViper(t, path))
	require.NoError(t, err)
	assert.Equal(t, "s3://models/delay/schema.json", c.Schema)
	assert.Equal(t, "http://tfs:8501", c.Predictor.URL)
	assert.Equal(t, 2*time.Second, c.Predictor.Timeout)
	assert.False(t, c.HistoryEnabled())
	assert.Equal(t, "mock", c.LLMConfig().Provider)

	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vuelos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("predictor:\n  url: http://file:8501\n"), 0o644))

	t.Setenv("VUELOS_PREDICTOR_URL", "http://env:8501")
	t.Setenv("VUELOS_LOG_FORMAT", "json")

	c, err := Load(newViper(t, path))
	require.NoError(t, err)
	assert.Equal(t, "http://env:8501", c.Predictor.URL)
	assert.Equal(t, "json", c.Log.Format)
}

func TestInit_MissingExplicitFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	err := Init(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad timezone", Config{Timezone: "Mars/Olympus"}},
		{"negative retries", Config{Predictor: PredictorConfig{Retries: -1}}},
		{"llm without key", Config{LLM: LLMConfig{Provider: "openai"}}},
		{"unknown llm", Config{LLM: LLMConfig{Provider: "skynet", APIKey: "k"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
	assert.NoError(t, Config{}.Validate())
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("VUELOS_TEST_FROM_DOTENV=yes\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("VUELOS_TEST_FROM_DOTENV") })

	require.NoError(t, LoadEnvFiles(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "yes", os.Getenv("VUELOS_TEST_FROM_DOTENV"))
}

func TestSchemaLoader(t *testing.T) {
	t.Setenv("HOME", "/home/traveler")
	l := Config{AWS: AWSConfig{Region: "us-east-1"}, GCS: GCSConfig{Credentials: "~/gcs.json"}}.SchemaLoader()
	assert.Equal(t, "us-east-1", l.AWSRegion)
	assert.Equal(t, "/home/traveler/gcs.json", l.GCSCredentialsFile)
}
