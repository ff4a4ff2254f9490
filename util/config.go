package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var Validate *validator.Validate

func InitValidator() {
	Validate = validator.New()
}

type Config struct {
	Port         string `validate:"required,number"`
	RoundSeconds int    `validate:"min=1"`
	LogLevel     string `validate:"required"`
}

const defaultRoundSeconds = 300

func LoadConfig() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:         os.Getenv("PORT"),
		RoundSeconds: defaultRoundSeconds,
		LogLevel:     os.Getenv("LOG_LEVEL"),
	}

	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	if v := os.Getenv("ROUND_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)

		if err != nil {
			return nil, fmt.Errorf("invalid ROUND_SECONDS: %w", err)
		}

		config.RoundSeconds = n
	}

	if err := Validate.Struct(config); err != nil {
		return nil, err
	}

	return config, nil
}
