package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	// AdminCredential is the bootstrap credential of the single master administrator.
	// It is never self-registered; it is provisioned on the first successful admin login.
	AdminCredential struct {
		ID       string
		Email    string
		Password string
		Username string
	}

	StorageConfig struct {
		Backend      string // bolt | redis | memory
		Path         string
		Namespace    string
		WriteTimeout time.Duration

		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}

	// CertificateRules holds the thresholds a learner must meet before a certificate is issued.
	CertificateRules struct {
		MinProgress        int
		MinQuizScore       float64
		MinAssignmentScore float64
	}

	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string
		WorkDir  string

		FrontendBaseURL   string
		RollbarToken      string
		SendgridApiKey    string
		EmailNotification bool
		CatalogPageSize   int

		Admin       AdminCredential
		Storage     StorageConfig
		Certificate CertificateRules

		defaultFromEmail string
	}
)

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Lumina")
	conf.SetDefault("build", "dev")
	conf.SetDefault("frontendBaseURL", "http://localhost:5173")
	conf.SetDefault("defaultFromEmail", "Lumina <noreply@localhost>")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("notifications.email", false)
	conf.SetDefault("catalog.pageSize", 6)

	conf.SetDefault("admin.id", "u-admin")
	conf.SetDefault("admin.email", "admin@gmail.com")
	conf.SetDefault("admin.password", "123@#$80aA")
	conf.SetDefault("admin.username", "Super Admin")

	conf.SetDefault("storage.backend", "bolt")
	conf.SetDefault("storage.path", filepath.Join("data", "elearning.db"))
	conf.SetDefault("storage.namespace", "elearning")
	conf.SetDefault("storage.writeTimeout", 3*time.Second)
	conf.SetDefault("redis.addr", "localhost:6379")
	conf.SetDefault("redis.password", "")
	conf.SetDefault("redis.db", 0)

	conf.SetDefault("certificate.minProgress", 100)
	conf.SetDefault("certificate.minQuizScore", 70.0)
	conf.SetDefault("certificate.minAssignmentScore", 70.0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	case "PROD":
		conf.SetDefault("debug", false)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}
	conf.SetDefault("workDir", wd)

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
		Env:               env,
		Debug:             conf.GetBool("debug"),
		TestMode:          conf.GetBool("testMode"),
		AppName:           conf.GetString("appName"),
		Build:             conf.GetString("build"),
		WorkDir:           conf.GetString("workDir"),
		FrontendBaseURL:   conf.GetString("frontendBaseURL"),
		RollbarToken:      conf.GetString("rollbarToken"),
		SendgridApiKey:    conf.GetString("sendgridApiKey"),
		EmailNotification: conf.GetBool("notifications.email"),
		CatalogPageSize:   conf.GetInt("catalog.pageSize"),
		Admin: AdminCredential{
			ID:       conf.GetString("admin.id"),
			Email:    CleanString(conf.GetString("admin.email"), true /* lower */),
			Password: conf.GetString("admin.password"),
			Username: conf.GetString("admin.username"),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(conf.GetString("storage.backend")),
			Path:          conf.GetString("storage.path"),
			Namespace:     conf.GetString("storage.namespace"),
			WriteTimeout:  conf.GetDuration("storage.writeTimeout"),
			RedisAddr:     conf.GetString("redis.addr"),
			RedisPassword: conf.GetString("redis.password"),
			RedisDB:       conf.GetInt("redis.db"),
		},
		Certificate: CertificateRules{
			MinProgress:        conf.GetInt("certificate.minProgress"),
			MinQuizScore:       conf.GetFloat64("certificate.minQuizScore"),
			MinAssignmentScore: conf.GetFloat64("certificate.minAssignmentScore"),
		},
		defaultFromEmail: conf.GetString("defaultFromEmail"),
	}
}

// DefaultFromEmail parses the configured sender address.
// An unparsable value falls back to a bare address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Address: c.defaultFromEmail}
	}
	return *addr
}
