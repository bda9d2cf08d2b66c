package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"`
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	Push struct {
		Enabled      bool   `yaml:"enabled"`
		ProjectID    string `yaml:"project_id"`
		ClientEmail  string `yaml:"client_email"`
		PrivateKey   string `yaml:"private_key"`       // PEM, service account
		TokenURI     string `yaml:"token_uri"`         // default https://oauth2.googleapis.com/token
		SendTimeout  int    `yaml:"send_timeout_sec"`  // per-request timeout
	} `yaml:"push"`

	Policy struct {
		// SingleAcceptedInfluencer - не более одного принятого
		// инфлюенсера на коллаборацию
		SingleAcceptedInfluencer bool `yaml:"single_accepted_influencer"`
	} `yaml:"policy"`

	Notifications struct {
		RetentionDays int `yaml:"retention_days"` // прочитанные старше N дней удаляются воркером
	} `yaml:"notifications"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	// Режим теста: конфигурация из переменных окружения
	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "test@collabhub.app"

	cfg.Push.Enabled = false
	cfg.Policy.SingleAcceptedInfluencer = true
	cfg.Notifications.RetentionDays = 90

	applyDefaults(&cfg)
	AppConfig = &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Push.TokenURI == "" {
		cfg.Push.TokenURI = "https://oauth2.googleapis.com/token"
	}
	if cfg.Push.SendTimeout == 0 {
		cfg.Push.SendTimeout = 10
	}
	if cfg.Notifications.RetentionDays == 0 {
		cfg.Notifications.RetentionDays = 90
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
