package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

var (
	MAIN_ROUTES  string
	APP_PORT     string
	JWTSecret    string
	AuthEnabled  bool
	LogLevel     string
	RedisAddress string
	NodeID       int64

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Shipment workflow
	StrictTransitions bool
	DelayResumable    bool

	// Intake pipeline
	QCDedupeByPallet bool
	QCTimeout        time.Duration
	QCServiceURL     string

	StockTakeHistoryLimit int
	LaborHourlyWageKES    float64
	GradingConfigPath     string

	allowedOrigins map[string]bool
)

// LoadConfig membaca file .env dan menginisialisasi variabel konfigurasi
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Server Configuration
	MAIN_ROUTES = getEnv("MAIN_ROUTES", "/api/v1")
	APP_PORT = getEnv("APP_PORT", "9000")
	LogLevel = getEnv("LOG_LEVEL", "info")

	// JWT Configuration
	JWTSecret = getEnv("JWT_SECRET", "intake_key_secret")
	AuthEnabled = getEnvAsBool("AUTH_ENABLED", true)

	// Database Configuration
	DBDriver = getEnv("DB_DRIVER", "mysql")
	DBHost = getEnv("DB_HOST", "localhost")
	DBPort = getEnv("DB_PORT", "3306")
	DBUser = getEnv("DB_USER", "intake")
	DBPassword = getEnv("DB_PASSWORD", "")
	DBName = getEnv("DB_NAME", "produce_intake")

	RedisAddress = getEnv("REDIS_ADDRESS", "")
	NodeID = int64(getEnvAsInt("SNOWFLAKE_NODE", 1))

	StrictTransitions = getEnvAsBool("SHIPMENT_STRICT_TRANSITIONS", false)
	DelayResumable = getEnvAsBool("SHIPMENT_DELAY_RESUMABLE", true)

	QCDedupeByPallet = getEnvAsBool("QC_DEDUPE_BY_PALLET", true)
	QCTimeout = getEnvAsDuration("QC_TIMEOUT", 15*time.Second)
	QCServiceURL = getEnv("QC_SERVICE_URL", "http://localhost:8090/diagnose")

	StockTakeHistoryLimit = getEnvAsInt("STOCK_TAKE_HISTORY_LIMIT", 50)
	LaborHourlyWageKES = getEnvAsFloat("LABOR_HOURLY_WAGE_KES", 250)
	GradingConfigPath = getEnv("GRADING_CONFIG", "config/grading.yaml")

	loadAllowedOrigins()
	initLogger(LogLevel)
}

// getEnv membaca environment variable dengan nilai default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func loadAllowedOrigins() {
	allowedOrigins = make(map[string]bool)
	originsStr := getEnv("ALLOWED_ORIGINS", "")

	if originsStr == "" {
		allowedOrigins = map[string]bool{
			"http://127.0.0.1:3000": true,
		}
		return
	}

	for _, origin := range strings.Split(originsStr, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
}

func SetupCORS(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if allowedOrigins[origin] {
			c.Set("Access-Control-Allow-Origin", origin)
			c.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			c.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Set("Access-Control-Allow-Credentials", "true")
		}

		// Handle preflight request
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	})
}
