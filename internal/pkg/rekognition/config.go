package rekognition

import "errors"

// Config holds the AWS Rekognition client settings
type Config struct {
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"accesskey"`
	SecretKey string `mapstructure:"secretkey"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Region == "" {
		return errors.New("rekognition: region is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return errors.New("rekognition: credentials are required")
	}
	return nil
}
