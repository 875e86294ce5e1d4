package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables holding the embedding API key, in lookup order.
const (
	EnvAPIKey       = "API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// LoadEnv reads dotenv files into the process environment. Variables that
// are already set win. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// LoadAPIKey returns the embedding API key from the environment.
// An empty result means no key is configured.
func LoadAPIKey() string {
	for _, name := range []string{EnvAPIKey, EnvOpenAIAPIKey} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
