package execenv

import (
	"os"

	"github.com/joho/godotenv"

	mcerrors "github.com/systmms/memclear/internal/errors"
	"github.com/systmms/memclear/internal/secure"
	"github.com/systmms/memclear/pkg/wipe"
)

// LoadSealedEnvFile reads a dotenv-format file and seals every value. The
// raw file buffer is wiped once parsed; the parsed value strings are
// transient plaintext that sealing cuts short but cannot retroactively
// erase, which is what --shred-after is for on the file side.
func LoadSealedEnvFile(path string) (map[string]*secure.Sealed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mcerrors.ConfigError{
				Field:      "env_file",
				Value:      path,
				Message:    "env file not found",
				Suggestion: "Check the --env-file path or exec.env_file in .memclear.yaml",
			}
		}
		return nil, mcerrors.UserError{
			Message:    "Failed to read env file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}
	defer wipe.Bytes(data)

	vars, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, mcerrors.ConfigError{
			Field:      "env_file",
			Value:      path,
			Message:    "invalid env file syntax",
			Suggestion: "Use KEY=value lines; see https://github.com/joho/godotenv for the accepted format",
		}
	}

	sealed := make(map[string]*secure.Sealed, len(vars))
	for key, value := range vars {
		sealed[key] = secure.Seal([]byte(value))
	}
	return sealed, nil
}

// DestroyAll destroys every sealed value in the map. Safe on nil maps.
func DestroyAll(sealed map[string]*secure.Sealed) {
	for _, s := range sealed {
		s.Destroy()
	}
}
