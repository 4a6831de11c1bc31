package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests
// TEST_DB_DRIVER selects the engine (sqlite by default). For mysql, when any TEST_DB_* value is missing
// the returned Config has an empty DSN which lets tests fall back to an embedded database
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("./../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Database.Driver = os.Getenv("TEST_DB_DRIVER")
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.Driver == DriverSQLite {
		cfg.Database.Path = os.Getenv("TEST_DB_PATH")
		return cfg, nil
	}

	dbHost := os.Getenv("TEST_DB_HOST")
	if dbHost == "" {
		return cfg, nil
	}

	dbPortStr := os.Getenv("TEST_DB_PORT")
	if dbPortStr == "" {
		return cfg, nil
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}

	dbUser := os.Getenv("TEST_DB_USER")
	dbPassword := os.Getenv("TEST_DB_PASSWORD")
	dbName := os.Getenv("TEST_DB_NAME")
	if dbUser == "" || dbPassword == "" || dbName == "" {
		return cfg, nil
	}

	cfg.Database.Host = dbHost
	cfg.Database.Port = dbPort
	cfg.Database.User = dbUser
	cfg.Database.Password = dbPassword
	cfg.Database.DBName = dbName

	return cfg, nil
}
