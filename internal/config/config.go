package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`

	AuthSecret string        `mapstructure:"AUTH_SECRET"`
	TokenTTL   time.Duration `mapstructure:"TOKEN_TTL"`

	TechEmail    string `mapstructure:"TECH_EMAIL"`
	TechPassword string `mapstructure:"TECH_PASSWORD"`
	TechName     string `mapstructure:"TECH_NAME"`
	VanStatus    string `mapstructure:"VAN_STATUS"`

	MapBaseURL string `mapstructure:"MAP_BASE_URL"`
	SeedOrders bool   `mapstructure:"SEED_ORDERS"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("AUTH_SECRET", "garra-dev-secret")
	v.SetDefault("TOKEN_TTL", "12h")
	v.SetDefault("TECH_EMAIL", "tech@garra.gov.br")
	v.SetDefault("TECH_PASSWORD", "123456")
	v.SetDefault("TECH_NAME", "Carlos Silva")
	v.SetDefault("VAN_STATUS", "OK - Abastecida")
	v.SetDefault("SEED_ORDERS", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
