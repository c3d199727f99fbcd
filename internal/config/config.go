package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	UploadDir string
	ExportDir string
	LogLevel  string
	LogJSON   bool
}

type CacheConfig struct {
	Enabled             bool
	RedisURL            string
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	DashboardTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AnalysisConfig drives the reconstruction engine: which columns are
// warehouses, which are sites, and the reporting knobs.
type AnalysisConfig struct {
	Warehouses []string
	Sites      []string
	Strict     bool

	RangeStart string
	RangeEnd   string

	DeadStockDays int
	ElevatedDays  int
	UrgentDays    int

	LongLeadDays    int
	DuplicatePolicy string
	Workers         int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "caseledger")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("APP_EXPORT_DIR", "./data/exports")
		viper.SetDefault("APP_LOG_LEVEL", "info")
		viper.SetDefault("APP_LOG_JSON", false)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_DASHBOARD_TTL_SECONDS", 60)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "127.0.0.1:9000")
		viper.SetDefault("STORAGE_BUCKET", "caseledger-snapshots")
		viper.SetDefault("STORAGE_USE_SSL", false)
		viper.SetDefault("ANALYSIS_WAREHOUSES", []string{})
		viper.SetDefault("ANALYSIS_SITES", []string{})
		viper.SetDefault("ANALYSIS_STRICT", false)
		viper.SetDefault("ANALYSIS_RANGE_START", "")
		viper.SetDefault("ANALYSIS_RANGE_END", "")
		viper.SetDefault("ANALYSIS_DEAD_STOCK_DAYS", 90)
		viper.SetDefault("ANALYSIS_ELEVATED_DAYS", 180)
		viper.SetDefault("ANALYSIS_URGENT_DAYS", 365)
		viper.SetDefault("ANALYSIS_LONG_LEAD_DAYS", 120)
		viper.SetDefault("ANALYSIS_DUPLICATE_POLICY", "ignore")
		viper.SetDefault("ANALYSIS_WORKERS", 4)

		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_UPLOAD_DIR"))
		ensureDir(viper.GetString("APP_EXPORT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				UploadDir: viper.GetString("APP_UPLOAD_DIR"),
				ExportDir: viper.GetString("APP_EXPORT_DIR"),
				LogLevel:  viper.GetString("APP_LOG_LEVEL"),
				LogJSON:   viper.GetBool("APP_LOG_JSON"),
			},
			Cache: CacheConfig{
				Enabled:             viper.GetBool("CACHE_ENABLED"),
				RedisURL:            viper.GetString("REDIS_URL"),
				RedisHost:           viper.GetString("REDIS_HOST"),
				RedisPort:           viper.GetString("REDIS_PORT"),
				RedisPassword:       viper.GetString("REDIS_PASSWORD"),
				RedisDB:             viper.GetInt("REDIS_DB"),
				DashboardTTLSeconds: viper.GetInt("CACHE_DASHBOARD_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Analysis: AnalysisConfig{
				Warehouses:      viper.GetStringSlice("ANALYSIS_WAREHOUSES"),
				Sites:           viper.GetStringSlice("ANALYSIS_SITES"),
				Strict:          viper.GetBool("ANALYSIS_STRICT"),
				RangeStart:      viper.GetString("ANALYSIS_RANGE_START"),
				RangeEnd:        viper.GetString("ANALYSIS_RANGE_END"),
				DeadStockDays:   viper.GetInt("ANALYSIS_DEAD_STOCK_DAYS"),
				ElevatedDays:    viper.GetInt("ANALYSIS_ELEVATED_DAYS"),
				UrgentDays:      viper.GetInt("ANALYSIS_URGENT_DAYS"),
				LongLeadDays:    viper.GetInt("ANALYSIS_LONG_LEAD_DAYS"),
				DuplicatePolicy: viper.GetString("ANALYSIS_DUPLICATE_POLICY"),
				Workers:         viper.GetInt("ANALYSIS_WORKERS"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
