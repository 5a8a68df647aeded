package config

import (
	"time"

	"github.com/spf13/viper"
)

type Ai struct {
	// Base url of the image generation API
	Url string

	// API key sent as a bearer token
	ApiKey string

	// Model used for generation
	Model string

	// Size of the generated image
	ImageSize string

	// Timeout for a single generation request
	RequestTimeout time.Duration
}

type Storage struct {
	// Base url of the pinning service API
	Url string

	// API key sent as a bearer token
	ApiKey string

	// Timeout for a single upload request
	RequestTimeout time.Duration
}

func setAiDefaults() {
	viper.SetDefault("Ai.Url", "https://api.openai.com")
	viper.SetDefault("Ai.ApiKey", "")
	viper.SetDefault("Ai.Model", "dall-e-3")
	viper.SetDefault("Ai.ImageSize", "1024x1024")
	viper.SetDefault("Ai.RequestTimeout", "60s")
}

func setStorageDefaults() {
	viper.SetDefault("Storage.Url", "https://api.pinata.cloud")
	viper.SetDefault("Storage.ApiKey", "")
	viper.SetDefault("Storage.RequestTimeout", "60s")
}
