package database

import (
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lanprime/internal/domain"
	"lanprime/internal/models"
)

// SeedAdmin creates the admin account from ADMIN_EMAIL/ADMIN_PASSWORD when
// one does not exist yet. A no-op when the env vars are unset.
func SeedAdmin(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[SEED] admin lookup: %v", err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[SEED] admin password hash: %v", err)
		return
	}
	admin := models.User{Email: email, PasswordHash: string(hash), Role: domain.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[SEED] admin create: %v", err)
		return
	}
	log.Printf("[SEED] admin account created: %s", email)
}
