package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// JWT access tokens
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Refresh tokens (opaque, stored hashed)
	RefreshTokenExpiryDuration time.Duration

	// Password hashing
	PasswordPepper string
	BcryptCost     int

	// Login lockout
	MaxLoginAttempts    int
	AccountLockDuration time.Duration

	// Single-use purpose tokens
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration

	// Frontend base URL used in emailed links
	ClientURL string

	// SMTP relay
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	// External OAuth providers
	GoogleClientID       string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL    string `mapstructure:"GOOGLE_REDIRECT_URL"`
	GitHubClientID       string `mapstructure:"GITHUB_CLIENT_ID"`
	GitHubClientSecret   string `mapstructure:"GITHUB_CLIENT_SECRET"`
	FacebookClientID     string `mapstructure:"FACEBOOK_APP_ID"`
	FacebookClientSecret string `mapstructure:"FACEBOOK_APP_SECRET"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "15m")
	viper.SetDefault("JWT_ISSUER", "user-auth-app")
	viper.SetDefault("REFRESH_TOKEN_EXPIRY_DURATION", "168h")
	viper.SetDefault("PASSWORD_PEPPER", "")
	viper.SetDefault("BCRYPT_COST", 12)
	viper.SetDefault("MAX_LOGIN_ATTEMPTS", 5)
	viper.SetDefault("ACCOUNT_LOCK_DURATION", "15m")
	viper.SetDefault("VERIFICATION_TOKEN_TTL", "1h")
	viper.SetDefault("RESET_TOKEN_TTL", "1h")
	viper.SetDefault("CLIENT_URL", "http://localhost:3000")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASS", "")
	viper.SetDefault("EMAIL_FROM", "Auth System <noreply@example.com>")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("GITHUB_CLIENT_ID", "")
	viper.SetDefault("GITHUB_CLIENT_SECRET", "")
	viper.SetDefault("FACEBOOK_APP_ID", "")
	viper.SetDefault("FACEBOOK_APP_SECRET", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTExpiryDuration = parseDurationOr("JWT_EXPIRY_DURATION", 15*time.Minute)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.RefreshTokenExpiryDuration = parseDurationOr("REFRESH_TOKEN_EXPIRY_DURATION", 7*24*time.Hour)

	cfg.PasswordPepper = viper.GetString("PASSWORD_PEPPER")
	if cfg.PasswordPepper == "" {
		log.Println("Warning: PASSWORD_PEPPER not set. Password hashes will not be peppered.")
	}
	cfg.BcryptCost = viper.GetInt("BCRYPT_COST")

	cfg.MaxLoginAttempts = viper.GetInt("MAX_LOGIN_ATTEMPTS")
	cfg.AccountLockDuration = parseDurationOr("ACCOUNT_LOCK_DURATION", 15*time.Minute)
	cfg.VerificationTokenTTL = parseDurationOr("VERIFICATION_TOKEN_TTL", time.Hour)
	cfg.ResetTokenTTL = parseDurationOr("RESET_TOKEN_TTL", time.Hour)

	cfg.ClientURL = viper.GetString("CLIENT_URL")

	cfg.SMTPHost = viper.GetString("SMTP_HOST")
	cfg.SMTPPort = viper.GetInt("SMTP_PORT")
	cfg.SMTPUser = viper.GetString("SMTP_USER")
	cfg.SMTPPass = viper.GetString("SMTP_PASS")
	cfg.EmailFrom = viper.GetString("EMAIL_FROM")
	if cfg.SMTPHost == "" {
		log.Println("Warning: SMTP_HOST not set. Outbound emails will be logged instead of sent.")
	}

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.GitHubClientID = viper.GetString("GITHUB_CLIENT_ID")
	cfg.GitHubClientSecret = viper.GetString("GITHUB_CLIENT_SECRET")
	cfg.FacebookClientID = viper.GetString("FACEBOOK_APP_ID")
	cfg.FacebookClientSecret = viper.GetString("FACEBOOK_APP_SECRET")

	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google OAuth will not function.")
	}
	if cfg.GitHubClientID == "" {
		log.Println("Warning: GITHUB_CLIENT_ID not set. GitHub OAuth will not function.")
	}
	if cfg.FacebookClientID == "" {
		log.Println("Warning: FACEBOOK_APP_ID not set. Facebook OAuth will not function.")
	}

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}
