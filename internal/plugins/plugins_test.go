package plugins

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDisabled(t *testing.T) {
	logger.Init(false, false, true)

	reg := Load("", logger.Default())
	assert.Zero(t, reg.Count())
	assert.Empty(t, reg.Sensors())
}

func TestLoadMissingDir(t *testing.T) {
	logger.Init(false, false, true)

	reg := Load(filepath.Join(t.TempDir(), "does-not-exist"), logger.Default())
	assert.Zero(t, reg.Count())
}

func TestLoadSkipsBadCandidates(t *testing.T) {
	logger.Init(false, false, true)

	dir := t.TempDir()

	// Not a valid plugin; must be skipped without aborting the scan
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.so"), []byte("not an ELF"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "also-broken.so"), []byte{0x00, 0x01}, 0o644))

	// Non-.so files are not candidates at all
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0o644))

	reg := Load(dir, logger.Default())
	assert.Zero(t, reg.Count())
}

const pluginSource = `package main

import "github.com/DesignSparkRS/DesignSpark.ESDK/sensor"

type extSensor struct{ key string }

func (s extSensor) Key() string { return s.key }

func (s extSensor) Read() (sensor.Values, error) {
	return sensor.Values{"sensor": "EXT0.1", "value": 1}, nil
}

func NewSensor() sensor.Sensor { return extSensor{key: %q} }
`

// buildTestPlugin compiles a minimal sensor plugin into dir. Environments
// that cannot build plugins (missing toolchain, platform without plugin
// support, no module cache) skip the calling test.
func buildTestPlugin(t *testing.T, dir, name, key string) {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	moduleRoot, err := filepath.Abs(filepath.Join(filepath.Dir(thisFile), "..", ".."))
	require.NoError(t, err)

	workDir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(workDir, 0o755))

	goMod := fmt.Sprintf(`module exampleplugin/%s

go 1.22

require github.com/DesignSparkRS/DesignSpark.ESDK v0.0.0

replace github.com/DesignSparkRS/DesignSpark.ESDK => %s
`, name, moduleRoot)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "go.mod"), []byte(goMod), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "main.go"), []byte(fmt.Sprintf(pluginSource, key)), 0o644))

	cmd := exec.Command("go", "build", "-buildmode=plugin", "-o", filepath.Join(dir, name+".so"), ".")
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "GOFLAGS=-mod=mod", "GOSUMDB=off", "CGO_ENABLED=1")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot build test plugin: %v\n%s", err, out)
	}
}

func TestLoadMixedCandidates(t *testing.T) {
	logger.Init(false, false, true)

	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not available")
	}
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("plugins unsupported on %s", runtime.GOOS)
	}

	dir := t.TempDir()
	buildTestPlugin(t, dir, "alpha", "ext-alpha")
	buildTestPlugin(t, dir, "beta", "ext-beta")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gamma.so"), []byte("not an ELF"), 0o644))

	// Three candidates, one unloadable: the other two must come up
	reg := Load(dir, logger.Default())
	require.Equal(t, 2, reg.Count())

	keys := make([]string, 0, reg.Count())
	for _, s := range reg.Sensors() {
		keys = append(keys, s.Key())

		values, err := s.Read()
		require.NoError(t, err)
		assert.Equal(t, "EXT0.1", values["sensor"])
	}
	assert.ElementsMatch(t, []string{"ext-alpha", "ext-beta"}, keys)
}
