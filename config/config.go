package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	GenAI struct {
		APIKey          string `mapstructure:"apiKey"`
		VisionModel     string `mapstructure:"visionModel"`
		EstimationModel string `mapstructure:"estimationModel"`
		SymptomModel    string `mapstructure:"symptomModel"`
	} `mapstructure:"genai"`
	FoodData struct {
		APIKey    string        `mapstructure:"apiKey"`
		BaseURL   string        `mapstructure:"baseURL"`
		DataTypes []string      `mapstructure:"dataTypes"`
		PageSize  int           `mapstructure:"pageSize"`
		Timeout   time.Duration `mapstructure:"timeout"`
		CacheTTL  time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"fooddata"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// API keys never live in config.yml
	if err := v.BindEnv("genai.apiKey", "GEMINI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("fooddata.apiKey", "FDC_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("failed to bind FDC_API_KEY: %w", err)
	}

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
