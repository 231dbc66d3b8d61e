package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "aq.toml")
	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err)

	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
interval = 5

[esdk]
friendlyname = "workshop"
gps = true
latitude = 50.72
longitude = -1.88
plugindir = "/aq/plugins"

[no2]
sensitivity = -25.5
tia_gain = 350
voffset = 0.02
window = 10
samples = 7
sample_delay = "10ms"

[telemetry]
enabled = true
dbpath = "/tmp/telemetry.db"

[mqtt]
broker = "tcp://localhost:1883"
basetopic = "aq/workshop"
`)
	t.Setenv("ESDK_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Interval, "Expected Interval 5")
	assert.Equal(t, "workshop", cfg.ESDK.FriendlyName)
	assert.True(t, cfg.ESDK.GPS, "Expected GPS enabled")
	assert.InDelta(t, 50.72, cfg.ESDK.Latitude, 1e-9)
	assert.InDelta(t, -1.88, cfg.ESDK.Longitude, 1e-9)
	assert.Equal(t, "/aq/plugins", cfg.ESDK.PluginDir)
	assert.InDelta(t, -25.5, cfg.NO2.Sensitivity, 1e-9)
	assert.InDelta(t, 350.0, cfg.NO2.TIAGain, 1e-9)
	assert.InDelta(t, 0.02, cfg.NO2.VOffset, 1e-9)
	assert.Equal(t, 10, cfg.NO2.Window)
	assert.Equal(t, 7, cfg.NO2.Samples)
	assert.Equal(t, 10*time.Millisecond, cfg.NO2.SampleDelay)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "/tmp/telemetry.db", cfg.Telemetry.DBPath)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "aq/workshop", cfg.MQTT.BaseTopic)
}

func TestLoadDefaults(t *testing.T) {
	// Point at an empty dir so no config file is found
	t.Setenv("ESDK_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultInterval, cfg.Interval)
	assert.Equal(t, "esdk", cfg.ESDK.FriendlyName)
	assert.False(t, cfg.ESDK.GPS, "Expected GPS disabled by default")
	assert.InDelta(t, config.DefaultNO2Sensitivity, cfg.NO2.Sensitivity, 1e-9)
	assert.InDelta(t, float64(config.DefaultNO2TIAGain), cfg.NO2.TIAGain, 1e-9)
	assert.Equal(t, config.DefaultNO2Window, cfg.NO2.Window)
	assert.Equal(t, config.DefaultNO2Samples, cfg.NO2.Samples)
	assert.Equal(t, 50*time.Millisecond, cfg.NO2.SampleDelay)
	assert.Equal(t, 2*time.Second, cfg.NO2.IdleDelay)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadInvalidFormat(t *testing.T) {
	configPath := writeConfig(t, "This is not a valid TOML file\n")
	t.Setenv("ESDK_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	configPath := writeConfig(t, `
[no2]
window = 0
`)
	t.Setenv("ESDK_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window")
}
