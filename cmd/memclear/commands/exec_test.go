package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/memclear/internal/config"
	"github.com/systmms/memclear/internal/logging"
	"github.com/systmms/memclear/internal/telemetry"
)

func newExecTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Path:   filepath.Join(t.TempDir(), ".memclear.yaml"),
		Logger: logging.New(false, true),
	}
}

// writeOut builds a shell snippet that writes a variable's value to a file.
// Keeping children on the zero-exit path matters here: a non-zero child
// makes the command exit the whole process.
func writeOut(varName, outPath string) string {
	return fmt.Sprintf("printf %%s \"$%s\" > %s", varName, outPath)
}

func TestExecCommand_NoCommandError(t *testing.T) {
	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No command specified")
}

func TestExecCommand_InvalidVarFlag(t *testing.T) {
	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{"--var", "missing-equals", "--", "true"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid variable")
	assert.Contains(t, err.Error(), "KEY=VALUE")
}

func TestExecCommand_FlagDefinitions(t *testing.T) {
	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)

	tests := []struct {
		flag     string
		defValue string
	}{
		{"env-file", ""},
		{"var", "[]"},
		{"print", "false"},
		{"keep-existing", "false"},
		{"working-dir", ""},
		{"timeout", "0s"},
		{"shred-after", "false"},
		{"metrics-listen", ""},
	}

	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.flag)
		require.NotNil(t, flag, "flag %s should exist", tt.flag)
		assert.Equal(t, tt.defValue, flag.DefValue, "flag %s default", tt.flag)
	}
}

func TestExecCommand_RunsCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{"--", "sh", "-c", "exit 0"})

	assert.NoError(t, cmd.Execute())
}

func TestExecCommand_SealedEnvReachesChild(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tempDir := t.TempDir()
	envPath := filepath.Join(tempDir, ".env.secret")
	require.NoError(t, os.WriteFile(envPath,
		[]byte("MEMCLEAR_TEST_TOKEN=sealed-token-value\n"), 0600))
	outPath := filepath.Join(tempDir, "out")

	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{
		"--env-file", envPath,
		"--", "sh", "-c", writeOut("MEMCLEAR_TEST_TOKEN", outPath),
	})

	require.NoError(t, cmd.Execute())

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "sealed-token-value", string(out))
}

func TestExecCommand_VarFlagReachesChild(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tempDir := t.TempDir()
	outPath := filepath.Join(tempDir, "out")

	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{
		"--var", "MEMCLEAR_TEST_INJECTED=via-flag",
		"--", "sh", "-c", writeOut("MEMCLEAR_TEST_INJECTED", outPath),
	})

	require.NoError(t, cmd.Execute())

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "via-flag", string(out))
}

func TestExecCommand_ConfigEnvFileApplies(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tempDir := t.TempDir()
	envPath := filepath.Join(tempDir, "secrets.env")
	require.NoError(t, os.WriteFile(envPath,
		[]byte("MEMCLEAR_TEST_FROM_FILE=file-value\n"), 0600))

	configPath := filepath.Join(tempDir, ".memclear.yaml")
	configYAML := "version: 0\n" +
		"exec:\n" +
		"  env_file: " + envPath + "\n" +
		"  env:\n" +
		"    MEMCLEAR_TEST_STATIC: config-value\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	outFile := filepath.Join(tempDir, "out-file")
	outStatic := filepath.Join(tempDir, "out-static")

	cfg := &config.Config{
		Path:   configPath,
		Logger: logging.New(false, true),
	}

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{
		"--", "sh", "-c",
		writeOut("MEMCLEAR_TEST_FROM_FILE", outFile) + "; " +
			writeOut("MEMCLEAR_TEST_STATIC", outStatic),
	})

	require.NoError(t, cmd.Execute())

	fromFile, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "file-value", string(fromFile))

	static, err := os.ReadFile(outStatic)
	require.NoError(t, err)
	assert.Equal(t, "config-value", string(static))
}

func TestExecCommand_VarFlagBeatsConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".memclear.yaml")
	configYAML := "version: 0\n" +
		"exec:\n" +
		"  env:\n" +
		"    MEMCLEAR_TEST_PRIORITY: config-value\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	outPath := filepath.Join(tempDir, "out")

	cfg := &config.Config{
		Path:   configPath,
		Logger: logging.New(false, true),
	}

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{
		"--var", "MEMCLEAR_TEST_PRIORITY=flag-value",
		"--", "sh", "-c", writeOut("MEMCLEAR_TEST_PRIORITY", outPath),
	})

	require.NoError(t, cmd.Execute())

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "flag-value", string(out))
}

func TestExecCommand_KeepExisting(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Setenv("MEMCLEAR_TEST_KEEP", "original")

	tempDir := t.TempDir()
	outPath := filepath.Join(tempDir, "out")

	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{
		"--keep-existing",
		"--var", "MEMCLEAR_TEST_KEEP=overridden",
		"--", "sh", "-c", writeOut("MEMCLEAR_TEST_KEEP", outPath),
	})

	require.NoError(t, cmd.Execute())

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "original", string(out))
}

func TestExecCommand_ShredAfter(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tempDir := t.TempDir()
	envPath := filepath.Join(tempDir, ".env.secret")
	require.NoError(t, os.WriteFile(envPath,
		[]byte("MEMCLEAR_TEST_EPHEMERAL=gone-soon\n"), 0600))

	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{
		"--env-file", envPath,
		"--shred-after",
		"--", "sh", "-c", "exit 0",
	})

	require.NoError(t, cmd.Execute())

	_, err := os.Stat(envPath)
	assert.True(t, os.IsNotExist(err), "env file should be shredded after a successful run")
}

func TestExecCommand_PrintMasksValues(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tempDir := t.TempDir()
	envPath := filepath.Join(tempDir, ".env.secret")
	require.NoError(t, os.WriteFile(envPath,
		[]byte("MEMCLEAR_TEST_SEALED=sealed-token-value\n"), 0600))

	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)
	output, err := captureCommandOutput(t, cmd, []string{
		"--print",
		"--env-file", envPath,
		"--var", "MEMCLEAR_TEST_PLAIN=supersecretvalue",
		"--", "sh", "-c", "exit 0",
	})
	require.NoError(t, err)

	assert.Contains(t, output, "MEMCLEAR_TEST_PLAIN=")
	assert.NotContains(t, output, "supersecretvalue")
	assert.Contains(t, output, "MEMCLEAR_TEST_SEALED=(sealed,")
	assert.NotContains(t, output, "sealed-token-value")
}

func TestExecCommand_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{
		"--timeout", "100ms",
		"--", "sh", "-c", "sleep 5",
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestExecCommand_MetricsListen(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := newExecTestConfig(t)

	cmd := NewExecCommand(cfg)
	cmd.SetArgs([]string{
		"--metrics-listen", "127.0.0.1:0",
		"--", "sh", "-c", "exit 0",
	})

	require.NoError(t, cmd.Execute())
	assert.True(t, telemetry.IsRegistered(), "metrics should register when a listener is requested")
}
