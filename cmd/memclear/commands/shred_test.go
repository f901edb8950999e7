package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/memclear/internal/config"
	"github.com/systmms/memclear/internal/logging"
)

func TestShredCommand_NoFilesError(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{}) // No files

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No files specified")
}

func TestShredCommand_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", "/nonexistent/file.txt"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot access path")
}

func TestShredCommand_ShredsFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "secret.txt")

	// Create a test file with some content
	content := []byte("secret data that should be shredded")
	require.NoError(t, os.WriteFile(testFile, content, 0644))

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", testFile})

	err := cmd.Execute()
	require.NoError(t, err)

	// Verify file was deleted
	_, err = os.Stat(testFile)
	assert.True(t, os.IsNotExist(err), "file should be deleted after shred")
}

func TestShredCommand_KeepOverwritesInPlace(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "secret.txt")

	content := []byte("secret data that should be overwritten")
	require.NoError(t, os.WriteFile(testFile, content, 0644))

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", "--keep", testFile})

	require.NoError(t, cmd.Execute())

	// File survives with the zero fill in place of its contents
	after, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.Len(t, after, len(content), "size should be unchanged")
	assert.True(t, bytes.Equal(after, make([]byte, len(content))), "contents should be zeroed")
}

func TestShredCommand_NonInteractiveRequiresForce(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "secret.txt")
	content := []byte("still here")
	require.NoError(t, os.WriteFile(testFile, content, 0644))

	cfg := &config.Config{
		Logger:         logging.New(false, true),
		NonInteractive: true,
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{testFile})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Confirmation required")
	assert.Contains(t, err.Error(), "--force")

	// Nothing was touched
	after, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.Equal(t, content, after)
}

func TestShredCommand_ConfigDefaults(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".memclear.yaml")
	configYAML := "version: 0\nshred:\n  passes: 2\n  remove: false\n"
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	testFile := filepath.Join(tempDir, "secret.txt")
	content := []byte("configured shred keeps the file")
	require.NoError(t, os.WriteFile(testFile, content, 0644))

	cfg := &config.Config{
		Path:   configPath,
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", testFile})

	require.NoError(t, cmd.Execute())

	// remove: false from config means the file stays, zeroed
	after, err := os.ReadFile(testFile)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(after, make([]byte, len(content))), "contents should be zeroed")
}

func TestShredCommand_InvalidPasses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		passes string
	}{
		{"zero passes", "0"},
		{"negative passes", "-1"},
		{"too many passes", "11"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Create a fresh file for each test
			tempDir := t.TempDir()
			testFile := filepath.Join(tempDir, "secret.txt")
			require.NoError(t, os.WriteFile(testFile, []byte("data"), 0644))

			cfg := &config.Config{
				Logger: logging.New(false, true),
			}

			cmd := NewShredCommand(cfg)
			cmd.SetArgs([]string{"--force", "--passes", tt.passes, testFile})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Invalid number of passes")
		})
	}
}

func TestShredCommand_DirectoryRequiresRecursive(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "secrets")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", subDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
	assert.Contains(t, err.Error(), "--recursive")
}

func TestShredCommand_RecursiveDirectory(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "secrets")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	// Create files in directory
	file1 := filepath.Join(subDir, "secret1.txt")
	file2 := filepath.Join(subDir, "secret2.txt")
	require.NoError(t, os.WriteFile(file1, []byte("secret 1"), 0644))
	require.NoError(t, os.WriteFile(file2, []byte("secret 2"), 0644))

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", "--recursive", subDir})

	err := cmd.Execute()
	require.NoError(t, err)

	// Verify files were deleted
	_, err = os.Stat(file1)
	assert.True(t, os.IsNotExist(err), "file1 should be deleted")
	_, err = os.Stat(file2)
	assert.True(t, os.IsNotExist(err), "file2 should be deleted")
}

func TestShredCommand_EmptyFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "empty.txt")

	// Create an empty file
	require.NoError(t, os.WriteFile(testFile, []byte{}, 0644))

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", testFile})

	err := cmd.Execute()
	require.NoError(t, err)

	// Verify file was deleted
	_, err = os.Stat(testFile)
	assert.True(t, os.IsNotExist(err), "empty file should be deleted")
}

func TestShredCommand_MultipleFiles(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	file1 := filepath.Join(tempDir, "secret1.txt")
	file2 := filepath.Join(tempDir, "secret2.txt")

	require.NoError(t, os.WriteFile(file1, []byte("secret 1"), 0644))
	require.NoError(t, os.WriteFile(file2, []byte("secret 2"), 0644))

	cfg := &config.Config{
		Logger: logging.New(false, true),
	}

	cmd := NewShredCommand(cfg)
	cmd.SetArgs([]string{"--force", file1, file2})

	err := cmd.Execute()
	require.NoError(t, err)

	// Verify both files were deleted
	_, err = os.Stat(file1)
	assert.True(t, os.IsNotExist(err), "file1 should be deleted")
	_, err = os.Stat(file2)
	assert.True(t, os.IsNotExist(err), "file2 should be deleted")
}
