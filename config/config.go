// server/config/config.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Sub-structs, mirroring the YAML layout ---

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	CORSOrigins     []string      `mapstructure:"corsOrigins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type MongoConfig struct {
	URI     string        `mapstructure:"uri"`
	DBName  string        `mapstructure:"dbName"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AuthConfig holds the shared secrets gating self-registration of privileged roles.
type AuthConfig struct {
	AdminSignupSecret string `mapstructure:"adminSignupSecret"`
	LabSignupSecret   string `mapstructure:"labSignupSecret"`
	BcryptCost        int    `mapstructure:"bcryptCost"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
	MaxUploadBytes   int64  `mapstructure:"maxUploadBytes"`
}

// Enabled reports whether attachment uploads are configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

// SeedConfig describes the admin account created by the seed-admin command.
type SeedConfig struct {
	AdminEmail    string `mapstructure:"adminEmail"`
	AdminPassword string `mapstructure:"adminPassword"`
	AdminName     string `mapstructure:"adminName"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// --- Main Config struct ---

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Auth   AuthConfig   `mapstructure:"auth"`
	S3     S3Config     `mapstructure:"s3"`
	Seed   SeedConfig   `mapstructure:"seed"`
	Log    LogConfig    `mapstructure:"log"`
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	var errList []error
	if c.Mongo.URI == "" {
		errList = append(errList, errors.New("mongo.uri (MONGO_URI) is required"))
	}
	if c.JWT.Secret == "" {
		errList = append(errList, errors.New("jwt.secret (JWT_SECRET) is required"))
	}
	return errors.Join(errList...)
}

// LoadConfig reads config.yaml from path and overrides it with environment
// variables. A .env file in the working directory is loaded first if present.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "5000")
	v.SetDefault("server.corsOrigins", []string{"*"})
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("mongo.dbName", "ayurtrack")
	v.SetDefault("mongo.timeout", 10*time.Second)
	v.SetDefault("jwt.expiration", 7*24*time.Hour)
	v.SetDefault("auth.bcryptCost", 10)
	v.SetDefault("s3.maxUploadBytes", 10<<20)
	v.SetDefault("seed.adminName", "Administrator")
	v.SetDefault("log.level", "info")

	v.AutomaticEnv()

	// Env names match the ones the frontend deployment already uses.
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("mongo.uri", "MONGO_URI")
	_ = v.BindEnv("mongo.dbName", "DB_NAME")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("jwt.expiration", "JWT_EXPIRES_IN")
	_ = v.BindEnv("auth.adminSignupSecret", "ADMIN_SIGNUP_SECRET")
	_ = v.BindEnv("auth.labSignupSecret", "LAB_SIGNUP_SECRET")
	_ = v.BindEnv("s3.bucket", "S3_BUCKET")
	_ = v.BindEnv("s3.region", "S3_REGION")
	_ = v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	_ = v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	_ = v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	_ = v.BindEnv("seed.adminEmail", "SEED_ADMIN_EMAIL")
	_ = v.BindEnv("seed.adminPassword", "SEED_ADMIN_PASSWORD")
	_ = v.BindEnv("log.level", "LOG_LEVEL")

	// Missing config.yaml is fine: env vars and defaults are enough.
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationHook,
		mapstructure.StringToSliceHookFunc(","),
	)))
	return
}

// durationHook parses Go durations and additionally accepts whole days ("7d").
func durationHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	return ParseDuration(data.(string))
}

// ParseDuration is time.ParseDuration plus a "<n>d" day suffix.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
