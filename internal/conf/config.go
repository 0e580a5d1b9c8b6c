package conf

import (
	"fmt"
	"time"

	"github.com/photogate-dev/photogate-backend/internal/image/pipeline"
	"github.com/photogate-dev/photogate-backend/internal/pkg/database"
	"github.com/photogate-dev/photogate-backend/internal/pkg/logger"
	"github.com/photogate-dev/photogate-backend/internal/pkg/minio"
	"github.com/photogate-dev/photogate-backend/internal/pkg/rekognition"
	"github.com/photogate-dev/photogate-backend/internal/pkg/workerpool"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig       `mapstructure:"server"`
	Database    database.Config    `mapstructure:"database"`
	Redis       RedisConfig        `mapstructure:"redis"`
	MinIO       minio.Config       `mapstructure:"minio"`
	Rekognition rekognition.Config `mapstructure:"rekognition"`
	Validation  pipeline.Config    `mapstructure:"validation"`
	Pool        workerpool.Config  `mapstructure:"pool"`
	RateLimit   RateLimitConfig    `mapstructure:"ratelimit"`
	Log         logger.Config      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Environment overrides for the validation knobs. Every one is optional;
// the file value (or the built-in default) applies when unset.
var validationEnvBindings = map[string]string{
	"validation.minwidth":      "MIN_IMAGE_WIDTH",
	"validation.minheight":     "MIN_IMAGE_HEIGHT",
	"validation.maxwidth":      "MAX_IMAGE_WIDTH",
	"validation.maxheight":     "MAX_IMAGE_HEIGHT",
	"validation.maxfilesize":   "MAX_FILE_SIZE",
	"validation.blurthreshold": "BLUR_THRESHOLD",
	"validation.minfacearea":   "MIN_FACE_AREA",
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	for key, env := range validationEnvBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}
	setValidationDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.MinIO.SetDefaults()

	return &config, nil
}

func setValidationDefaults() {
	defaults := pipeline.DefaultConfig()
	viper.SetDefault("validation.minwidth", defaults.MinWidth)
	viper.SetDefault("validation.minheight", defaults.MinHeight)
	viper.SetDefault("validation.maxwidth", defaults.MaxWidth)
	viper.SetDefault("validation.maxheight", defaults.MaxHeight)
	viper.SetDefault("validation.maxfilesize", defaults.MaxFileSize)
	viper.SetDefault("validation.blurthreshold", defaults.BlurThreshold)
	viper.SetDefault("validation.minfacearea", defaults.MinFaceArea)
}
