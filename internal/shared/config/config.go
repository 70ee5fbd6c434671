package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Seat holds and background jobs
	Holds HoldConfig
	Jobs  JobConfig

	// Messaging and monitoring
	Kafka   KafkaConfig
	Metrics MetricsConfig

	// Listing defaults
	Pagination  PaginationConfig
	DefaultCity string

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnectAttempts int
	ConnectBackoff  time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	CacheTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	JWTExpiresIn     time.Duration
	RefreshExpiresIn time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool          `json:"enabled"`
	WindowDuration    time.Duration `json:"window_duration"`
	DefaultRequests   int           `json:"default_requests"`
	PublicRequests    int           `json:"public_requests"`
	AuthRequests      int           `json:"auth_requests"`
	HoldRequests      int           `json:"hold_requests"`
	OrganizerRequests int           `json:"organizer_requests"`
	ClientRequests    int           `json:"client_requests"`
	HealthRequests    int           `json:"health_requests"`
	WhitelistedIPs    []string      `json:"whitelisted_ips"`
}

// HoldConfig controls the seat hold store
type HoldConfig struct {
	Store         string // "redis" or "memory"
	TTL           time.Duration
	SweepInterval time.Duration
	MaxEntries    int
}

// JobConfig controls the background archive scheduler
type JobConfig struct {
	Enabled      bool
	PollInterval time.Duration
	RetryDelay   time.Duration
	MaxAttempts  int
	BatchSize    int
	Lease        time.Duration
}

// KafkaConfig holds domain event publishing configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	Topic    string
	ClientID string
}

// MetricsConfig holds prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// PaginationConfig holds listing defaults
type PaginationConfig struct {
	DefaultPageNum  int
	DefaultPageSize int
	MaxPageSize     int
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "festival_tickets"),
			User:     getEnv("DB_USER", "festival"),
			Password: getEnv("DB_PASSWORD", "festival_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnectAttempts: getIntEnv("DB_CONNECT_ATTEMPTS", 5),
			ConnectBackoff:  getDurationEnv("DB_CONNECT_BACKOFF", 2*time.Second),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			// The hold and job scripts run on this pool next to the cache
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 20),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),

			CacheTTL: getDurationEnv("REDIS_CACHE_TTL", 1*time.Hour),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			JWTExpiresIn:     getDurationEnvSeconds("JWT_EXPIRES_IN", 15*time.Minute),
			RefreshExpiresIn: getDurationEnvSeconds("JWT_REFRESH_EXPIRES_IN", 24*time.Hour),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:           getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:    getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests:   getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:    getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 100),
			AuthRequests:      getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 10),
			HoldRequests:      getIntEnv("RATE_LIMIT_HOLD_REQUESTS", 20),
			OrganizerRequests: getIntEnv("RATE_LIMIT_ORGANIZER_REQUESTS", 200),
			ClientRequests:    getIntEnv("RATE_LIMIT_CLIENT_REQUESTS", 60),
			HealthRequests:    getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:    getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		Holds: HoldConfig{
			Store:         getEnv("HOLD_STORE", "redis"),
			TTL:           getDurationEnv("HOLD_TTL", 5*time.Minute),
			SweepInterval: getDurationEnv("HOLD_SWEEP_INTERVAL", 1*time.Minute),
			MaxEntries:    getIntEnv("HOLD_MAX_ENTRIES", 100000),
		},

		Jobs: JobConfig{
			Enabled:      getBoolEnv("JOBS_ENABLED", true),
			PollInterval: getDurationEnv("JOBS_POLL_INTERVAL", 30*time.Second),
			RetryDelay:   getDurationEnv("JOBS_RETRY_DELAY", 1*time.Minute),
			MaxAttempts:  getIntEnv("JOBS_MAX_ATTEMPTS", 5),
			BatchSize:    getIntEnv("JOBS_BATCH_SIZE", 50),
			Lease:        getDurationEnv("JOBS_LEASE", 5*time.Minute),
		},

		Kafka: KafkaConfig{
			Enabled:  getBoolEnv("KAFKA_ENABLED", false),
			Brokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:    getEnv("KAFKA_TOPIC", "festival-domain-events"),
			ClientID: getEnv("KAFKA_CLIENT_ID", "festival-tickets"),
		},

		Metrics: MetricsConfig{
			Enabled: getBoolEnv("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},

		Pagination: PaginationConfig{
			DefaultPageNum:  getIntEnv("PAGINATION_DEFAULT_PAGE", 1),
			DefaultPageSize: getIntEnv("PAGINATION_DEFAULT_SIZE", 6),
			MaxPageSize:     getIntEnv("PAGINATION_MAX_SIZE", 50),
		},
		DefaultCity: getEnv("DEFAULT_CITY", "Kyiv"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds gets an environment variable as seconds (int) and converts to time.Duration
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
