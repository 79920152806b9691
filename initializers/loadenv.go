package initializers

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file when one exists. A missing file
// is fine in deployment where the environment is set directly.
func LoadEnv() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		log.Println("No .env file found, using process environment")
		return nil
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("Failed to load .env file: %v", err)
		return err
	}
	log.Println("Env loaded successfully")
	return nil
}
