package config

import (
	"log"
	"os"

	"homebite-api/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// JWTSecret used to sign tokens — populated by Load
var JWTSecret []byte

// Load reads the optional .env file and resolves secrets from the
// environment. Real deployments set the environment directly.
func Load() {
	_ = godotenv.Load()
	JWTSecret = []byte(getEnv("JWT_SECRET", "homebite_super_secret_2024"))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the SQLite database and runs migrations.
func InitDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(getEnv("DB_PATH", "homebite.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("✅ Database connected and migrated successfully")
	return db
}

// Migrate runs schema auto-migration for all models. Tests call this
// against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.CookProfile{},
		&models.CustomerProfile{},
		&models.Meal{},
		&models.Order{},
		&models.OrderStatusHistory{},
		&models.Rating{},
	)
}
