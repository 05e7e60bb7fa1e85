package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	// Config holds all app-wide configuration, hydrated once at startup.
	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string
		AppName  string
		WorkDir  string

		// SecretKey signs institute and user tokens; AdminSecretKey signs
		// admin tokens only. Possession of one never grants the other role.
		SecretKey      []byte
		AdminSecretKey []byte

		// static admin credential pair; not stored per-record
		AdminEmail  string
		AdminSecret string

		DefaultFromEmail string
		FrontendBaseURL  string

		// platform fee (INR) an institute pays to create an event
		PlatformFee int64

		VerifyCodeTTL time.Duration

		Server     ServerConfig
		Database   DatabaseConfig
		Redis      RedisConfig
		Sendgrid   SendgridConfig
		Rollbar    RollbarConfig
		Cloudinary CloudinaryConfig
		Razorpay   RazorpayConfig
	}

	ServerConfig struct {
		Host              string
		Addr              string
		DebugHost         string
		ShutdownTimeout   time.Duration
		AdminTokenTTL     time.Duration
		InstituteTokenTTL time.Duration
		UserTokenTTL      time.Duration
	}

	DatabaseConfig struct {
		URI  string
		Name string
	}

	RedisConfig struct {
		URL string
	}

	SendgridConfig struct {
		APIKey string
	}

	RollbarConfig struct {
		Token string
	}

	CloudinaryConfig struct {
		CloudName string
		APIKey    string
		APISecret string
	}

	RazorpayConfig struct {
		KeyID     string
		KeySecret string
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Revelo")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w3lc0me-t0-r3vel0!change-me-in-prod")
	conf.SetDefault("adminSecretKey", "r3vel0-admin!change-me-in-prod")
	conf.SetDefault("adminEmail", "admin@localhost")
	conf.SetDefault("adminSecret", "admin")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("platformFee", 99)
	conf.SetDefault("verifyCodeTTL", 10*time.Minute)
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverDebugHost", "localhost:4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("adminTokenTTL", 12*time.Hour)
	conf.SetDefault("instituteTokenTTL", 12*24*time.Hour)
	conf.SetDefault("userTokenTTL", 12*time.Hour)
	conf.SetDefault("databaseURI", "mongodb://localhost:27017")
	conf.SetDefault("databaseName", "revelo")
	conf.SetDefault("redisURL", "localhost:6379")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		Env:              env,
		Build:            conf.GetString("build"),
		AppName:          conf.GetString("appName"),
		WorkDir:          wd,
		SecretKey:        []byte(conf.GetString("secretKey")),
		AdminSecretKey:   []byte(conf.GetString("adminSecretKey")),
		AdminEmail:       conf.GetString("adminEmail"),
		AdminSecret:      conf.GetString("adminSecret"),
		DefaultFromEmail: conf.GetString("defaultFromEmail"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		PlatformFee:      conf.GetInt64("platformFee"),
		VerifyCodeTTL:    conf.GetDuration("verifyCodeTTL"),
		Server: ServerConfig{
			Host:              conf.GetString("serverHost"),
			Addr:              conf.GetString("serverAddr"),
			DebugHost:         conf.GetString("serverDebugHost"),
			ShutdownTimeout:   conf.GetDuration("serverShutdownTimeout"),
			AdminTokenTTL:     conf.GetDuration("adminTokenTTL"),
			InstituteTokenTTL: conf.GetDuration("instituteTokenTTL"),
			UserTokenTTL:      conf.GetDuration("userTokenTTL"),
		},
		Database: DatabaseConfig{
			URI:  conf.GetString("databaseURI"),
			Name: conf.GetString("databaseName"),
		},
		Redis: RedisConfig{
			URL: conf.GetString("redisURL"),
		},
		Sendgrid: SendgridConfig{
			APIKey: conf.GetString("sendgridAPIKey"),
		},
		Rollbar: RollbarConfig{
			Token: conf.GetString("rollbarToken"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: conf.GetString("cloudinaryCloudName"),
			APIKey:    conf.GetString("cloudinaryAPIKey"),
			APISecret: conf.GetString("cloudinaryAPISecret"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     conf.GetString("razorpayKeyID"),
			KeySecret: conf.GetString("razorpayKeySecret"),
		},
	}
}
