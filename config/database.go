package config

import (
	"fmt"

	"github.com/Marina-Luz/TarotSphere/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	err = DB.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.BlacklistedToken{},
		&models.Purchase{},
		&models.Coupon{},
		&models.CouponUsage{},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	// Coupon codes must be unique case-insensitively; gorm's tag-level index
	// cannot express the LOWER() expression, so create it by hand.
	err = DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_code_lower
		ON coupons (LOWER(code))
		WHERE deleted_at IS NULL
	`).Error
	if err != nil {
		panic(fmt.Sprintf("Failed to create coupon code index: %v", err))
	}
}
