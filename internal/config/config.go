package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads at startup.
type Config struct {
	AppPort string

	DBDriver          string
	DatabaseDSN       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBAutoMigrate     bool

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL string

	UploadDir      string
	BaseURL        string
	MaxUploadBytes int

	// StrictHTTPStatus maps error envelopes to REST status codes instead of 200.
	StrictHTTPStatus bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "grosir.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("JWT_SECRET", "change_me")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("STRICT_HTTP_STATUS", false)
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, relying on environment variables")
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		AppPort:           v.GetString("APP_PORT"),
		DBDriver:          v.GetString("DB_DRIVER"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		DBMaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		DBAutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTTTL:            v.GetDuration("JWT_TTL"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		BaseURL:           v.GetString("BASE_URL"),
		MaxUploadBytes:    v.GetInt("MAX_UPLOAD_BYTES"),
		StrictHTTPStatus:  v.GetBool("STRICT_HTTP_STATUS"),
	}
}
