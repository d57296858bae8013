// Package config provides functionality for loading and accessing environment variables
// and the application configuration.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var once sync.Once

// LoadEnv loads environment variables from a .env file in the current or
// parent directory, once per process. Variables already present in the
// environment win over the file. It returns the file that was loaded, or ""
// when none was found.
func LoadEnv() string {
	var loaded string
	once.Do(func() {
		loaded = loadEnvFrom(".", "..")
	})
	return loaded
}

func loadEnvFrom(dirs ...string) string {
	for _, dir := range dirs {
		envFile := filepath.Join(dir, ".env")
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return ""
		}
		return envFile
	}
	return ""
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
