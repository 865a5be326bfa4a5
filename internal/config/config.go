package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/models"
)

// PricePolicy decides whether checkout honors the price captured at
// add-to-cart time or reprices against the current beer price.
const (
	PricePolicyCaptured = "captured"
	PricePolicyCurrent  = "current"
)

type Config struct {
	DB_HOST           string
	DB_PORT           string
	DB_USER           string
	DB_PASSWORD       string
	DB_NAME           string
	ES_URL            string
	ES_USER           string
	ES_PASSWORD       string
	JWT_SECRET        string
	REFRESH_SECRET    string
	KAFKA_ADDRESS     string
	ADMIN_SIGNUP_CODE string
	PRICE_POLICY      string
	AWS_REGION        string
	AWS_ACCESS_KEY    string
	AWS_SECRET_KEY    string
	SES_SENDER        string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:           os.Getenv("DB_HOST"),
		DB_PORT:           os.Getenv("DB_PORT"),
		DB_USER:           os.Getenv("DB_USER"),
		DB_PASSWORD:       os.Getenv("DB_PASSWORD"),
		DB_NAME:           os.Getenv("DB_NAME"),
		ES_URL:            os.Getenv("ES_URL"),
		ES_USER:           os.Getenv("ES_USER"),
		ES_PASSWORD:       os.Getenv("ES_PASSWORD"),
		JWT_SECRET:        os.Getenv("JWT_SECRET"),
		REFRESH_SECRET:    os.Getenv("REFRESH_SECRET"),
		KAFKA_ADDRESS:     os.Getenv("KAFKA_ADDRESS"),
		ADMIN_SIGNUP_CODE: os.Getenv("ADMIN_SIGNUP_CODE"),
		PRICE_POLICY:      os.Getenv("PRICE_POLICY"),
		AWS_REGION:        os.Getenv("AWS_REGION"),
		AWS_ACCESS_KEY:    os.Getenv("AWS_ACCESS_KEY_ID"),
		AWS_SECRET_KEY:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SES_SENDER:        os.Getenv("SES_SENDER"),
	}

	if config.PRICE_POLICY == "" {
		config.PRICE_POLICY = PricePolicyCaptured
	}

	return config, nil
}

func InitDB() (*gorm.DB, error) {
	configuration, _ := LoadConfig()

	host := configuration.DB_HOST
	port := configuration.DB_PORT
	user := configuration.DB_USER
	password := configuration.DB_PASSWORD
	dbname := configuration.DB_NAME

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Beer{},
		&models.User{},
		&models.RefreshToken{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.RoleChange{},
		&models.Notification{},
		&models.Subscription{},
	)
}
