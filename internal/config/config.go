package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every application setting.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Supabase     SupabaseConfig
	Email        EmailConfig
	Verification VerificationConfig
	Diagnostics  DiagnosticsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the connection settings of the hosted PostgreSQL database.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis settings. Redis is optional and only backs rate limiting.
type RedisConfig struct {
	Mode       string   `mapstructure:"mode"`
	Addrs      []string `mapstructure:"addrs"`
	Addr       string   `mapstructure:"addr"`
	Password   string   `mapstructure:"password"`
	DB         int      `mapstructure:"db"`
	MasterName string   `mapstructure:"master_name"`
	MaxRetries int      `mapstructure:"max_retries"`
}

// Enabled reports whether any Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return len(r.Addrs) > 0 || r.Addr != ""
}

// SupabaseConfig holds the identity platform endpoints and keys.
type SupabaseConfig struct {
	URL            string `mapstructure:"url"`
	ServiceRoleKey string `mapstructure:"service_role_key"`
	AnonKey        string `mapstructure:"anon_key"`
	JWTSecret      string `mapstructure:"jwt_secret"`
}

// EmailConfig holds the transactional email settings.
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
	AppDomain    string `mapstructure:"app_domain"`
}

// VerificationConfig controls verification code lifetime and storage.
type VerificationConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	// FastTemplates selects the single-statement upsert write path of the code store.
	FastTemplates bool `mapstructure:"fast_templates"`
}

// DiagnosticsConfig gates the maintenance and diagnostic routes.
type DiagnosticsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// PostgresConnectionString builds the PostgreSQL DSN.
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads .env (if present), the optional YAML file at configPath and the bound environment variables.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Config] failed to read .env: %v", err)
	}

	vip := viper.New()

	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 30)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "require")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("email.from", "UniVio <noreply@univio.ai>")
	vip.SetDefault("email.app_domain", "http://localhost:3000")
	vip.SetDefault("verification.ttl", 10*time.Minute)
	vip.SetDefault("verification.cleanup_interval", 5*time.Minute)
	vip.SetDefault("verification.fast_templates", false)
	vip.SetDefault("diagnostics.enabled", false)

	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	vip.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	vip.BindEnv("server.allowed_origins", "ALLOWED_ORIGINS")

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("supabase.url", "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL")
	vip.BindEnv("supabase.service_role_key", "SUPABASE_SERVICE_ROLE_KEY")
	vip.BindEnv("supabase.anon_key", "SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY")
	vip.BindEnv("supabase.jwt_secret", "SUPABASE_JWT_SECRET")

	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")
	vip.BindEnv("email.app_domain", "APP_DOMAIN", "NEXT_PUBLIC_DOMAIN")

	vip.BindEnv("verification.ttl", "VERIFICATION_TTL")
	vip.BindEnv("verification.cleanup_interval", "VERIFICATION_CLEANUP_INTERVAL")
	vip.BindEnv("verification.fast_templates", "USE_FAST_VERIFICATION_TEMPLATES")

	vip.BindEnv("diagnostics.enabled", "DIAGNOSTICS_ENABLED")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("[Config] config file '%s' not found, using environment and defaults", configPath)
			} else {
				log.Printf("[Config] warning: failed to read config file '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// ALLOWED_ORIGINS and REDIS_ADDRS arrive as one comma separated string from the environment.
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)
	cfg.Redis.Addrs = splitList(cfg.Redis.Addrs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Supabase.URL == "" || c.Supabase.ServiceRoleKey == "" {
		return fmt.Errorf("supabase configuration is incomplete (check SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY env vars)")
	}
	if c.Verification.TTL <= 0 {
		return fmt.Errorf("verification ttl must be positive, got %s", c.Verification.TTL)
	}
	if c.Verification.CleanupInterval <= 0 {
		return fmt.Errorf("verification cleanup interval must be positive, got %s", c.Verification.CleanupInterval)
	}
	return nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
