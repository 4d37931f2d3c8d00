package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are read in order; earlier files win because godotenv
// never overrides a variable that is already set
var DefaultEnvFiles = []string{".env.local", ".env"}

// LoadEnvFiles loads each existing dotenv file into the process environment
// and returns the ones that were read. Missing files are skipped.
func LoadEnvFiles(files ...string) ([]string, error) {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}
	var loaded []string
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, err
		}
		loaded = append(loaded, f)
	}
	return loaded, nil
}
