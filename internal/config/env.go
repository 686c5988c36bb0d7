package config

import (
	"os"

	"github.com/joho/godotenv"
)

// loadEnvFile loads a .env file from the current directory when present.
// Missing files are not an error; the caller decides whether to mention it.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}
