package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// PayU merchant credentials. Server-side only; the salt must never
	// reach the client.
	PayUKey  string
	PayUSalt string

	// Gateway endpoint the browser posts the payment form to.
	PayUGatewayURL string

	// Endpoint handed to the gateway as both surl and furl.
	PaymentReturnURL string

	TaxRate float64
}

const defaultTaxRate = 0.08

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:           os.Getenv("DB_HOST"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBPort:           os.Getenv("DB_PORT"),
		AppPort:          os.Getenv("APP_PORT"),
		AppEnv:           os.Getenv("APP_ENV"),
		PayUKey:          os.Getenv("PAYU_KEY"),
		PayUSalt:         os.Getenv("PAYU_SALT"),
		PayUGatewayURL:   os.Getenv("PAYU_GATEWAY_URL"),
		PaymentReturnURL: os.Getenv("PAYMENT_RETURN_URL"),
		TaxRate:          defaultTaxRate,
	}

	if v := os.Getenv("TAX_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatalf("Invalid TAX_RATE %q: %v", v, err)
		}
		cfg.TaxRate = rate
	}

	if cfg.PayUGatewayURL == "" {
		cfg.PayUGatewayURL = "https://test.payu.in/_payment"
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}
