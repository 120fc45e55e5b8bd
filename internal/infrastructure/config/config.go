// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported gateway backends
const (
	BackendOData    = "odata"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion  string
	LogLevel    string
	MetricsPort string

	// Gateway
	GatewayBackend string

	// OData
	ODataBaseURL      string
	ODataEntitySet    string
	ODataClientID     string
	ODataClientSecret string
	ODataTokenURL     string
	ODataTimeout      time.Duration

	// MongoDB
	MongoURI        string
	MongoDB         string
	MongoUser       string
	MongoPassword   string
	MongoCollection string

	// PostgreSQL
	PostgresURI string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:  getEnv("APP_VERSION", "1.0.0"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),

		GatewayBackend: getEnv("GATEWAY_BACKEND", BackendOData),

		ODataBaseURL:      getEnv("ODATA_BASE_URL", "http://localhost:8000/sap/opu/odata/sap/ZFLIGHT_SRV"),
		ODataEntitySet:    getEnv("ODATA_ENTITY_SET", "WASet"),
		ODataClientID:     getEnv("ODATA_CLIENT_ID", ""),
		ODataClientSecret: getEnv("ODATA_CLIENT_SECRET", ""),
		ODataTokenURL:     getEnv("ODATA_TOKEN_URL", ""),
		ODataTimeout:      time.Duration(getEnvAsInt("ODATA_TIMEOUT", 30)) * time.Second,

		MongoURI:        getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "flightdesk"),
		MongoUser:       getEnv("MONGO_USER", ""),
		MongoPassword:   getEnv("MONGO_PASSWORD", ""),
		MongoCollection: getEnv("MONGO_COLLECTION", "flight_bookings"),

		PostgresURI: getEnv("POSTGRES_DSN", "postgres://localhost:5432/flightdesk?sslmode=disable"),
	}

	switch config.GatewayBackend {
	case BackendOData, BackendMongo, BackendPostgres:
	default:
		return nil, fmt.Errorf("unknown GATEWAY_BACKEND %q", config.GatewayBackend)
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
