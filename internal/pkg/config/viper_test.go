package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: passcode
modules:
  passcode:
    sweep_interval_seconds: 60
    lock_wait_ms: 250
    mock:
      enabled: true
    consumer_names: "passcode_delivery_mail, ,other"
    mask_fields:
      - code
      - " password "
instrument:
  trace_sample_ratio: 0.5
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "passcode", cfg.GetString("app.name"))
	assert.Equal(t, time.Minute, cfg.GetSecond("modules.passcode.sweep_interval_seconds"))
	assert.Equal(t, time.Hour, cfg.GetMinute("modules.passcode.sweep_interval_seconds"))
	assert.Equal(t, 250*time.Millisecond, cfg.GetMillisecond("modules.passcode.lock_wait_ms"))
	assert.True(t, cfg.GetBool("modules.passcode.mock.enabled"))
	assert.InDelta(t, 0.5, cfg.GetFloat64("instrument.trace_sample_ratio"), 1e-9)
	assert.Equal(t, 60, cfg.GetInt("modules.passcode.sweep_interval_seconds"))
	assert.Equal(t, int32(60), cfg.GetInt32("modules.passcode.sweep_interval_seconds"))
	assert.Equal(t, uint16(60), cfg.GetUint16("modules.passcode.sweep_interval_seconds"))
	assert.NoError(t, cfg.Close())
}

func TestViper_GetArray(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"passcode_delivery_mail", "other"}, cfg.GetArray("modules.passcode.consumer_names"))
	assert.Equal(t, []string{"code", "password"}, cfg.GetArray("modules.passcode.mask_fields"))
	assert.Empty(t, cfg.GetArray("missing.key"))
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sampleYAML))
	assert.ErrorIs(t, err, ErrConfigTypeRequired)
}

func TestNewViper_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))

	cfg, err := NewViper(file)
	require.NoError(t, err)

	assert.Equal(t, "passcode", cfg.GetString("app.name"))
}

func TestNewViper_EnvOverride(t *testing.T) {
	t.Setenv("APP_NAME", "from-env")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.GetString("app.name"))
}
