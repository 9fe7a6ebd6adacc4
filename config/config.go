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
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Places struct {
		SearchEndpoint       string        `mapstructure:"searchEndpoint"`
		LegacySearchEndpoint string        `mapstructure:"legacySearchEndpoint"`
		PhotoMaxWidthPx      int           `mapstructure:"photoMaxWidthPx"`
		MaxResults           int           `mapstructure:"maxResults"`
		Timeout              time.Duration `mapstructure:"timeout"`
	} `mapstructure:"places"`
	AI struct {
		Model       string        `mapstructure:"model"`
		Temperature float64       `mapstructure:"temperature"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"ai"`
	Pipeline struct {
		JobTimeout     time.Duration `mapstructure:"jobTimeout"`
		ResolveDelay   time.Duration `mapstructure:"resolveDelay"`
		PromptPlaceCap int           `mapstructure:"promptPlaceCap"`
	} `mapstructure:"pipeline"`
	Progress struct {
		TerminalTTL time.Duration `mapstructure:"terminalTTL"`
	} `mapstructure:"progress"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
