package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "motor-speed", c.AppName)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":9090", c.GRPCAddr)
	assert.Equal(t, "random_forest_model_df1.json", c.Artifacts.Model)
	assert.Equal(t, "scaler_df1.json", c.Artifacts.Scaler)
	assert.Equal(t, "target_scaler_df1.json", c.Artifacts.TargetScaler)
	assert.Equal(t, "feature_schema_df1.yaml", c.Artifacts.Schema)
	assert.Equal(t, 1<<20, c.MemoBytes)
	assert.Equal(t, 5*time.Second, c.ReadHeaderTimeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MOTORSPEED_HTTP_ADDR", ":18080")
	t.Setenv("MOTORSPEED_ARTIFACTS_DIR", "/srv/artifacts")
	t.Setenv("MOTORSPEED_LOG_LEVEL", "debug")

	v, err := New("")
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":18080", c.HTTPAddr)
	assert.Equal(t, "/srv/artifacts", c.Artifacts.Dir)
	assert.Equal(t, "DEBUG", c.LogLevel)
}

func TestConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "motor-speed.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
artifacts:
  model: model_v2.json
memo:
  size_bytes: 2097152
`), 0o644))

	v, err := New(file)
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "model_v2.json", c.Artifacts.Model)
	assert.Equal(t, "scaler_df1.json", c.Artifacts.Scaler)
	assert.Equal(t, 2<<20, c.MemoBytes)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)
	v.Set(KeyLogLevel, "chatty")
	v.Set(KeyLatencyAlpha, 1.5)
	v.Set(KeyAppName, " ")

	_, err = Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "latency_alpha")
	assert.Contains(t, err.Error(), "app.name")
}
