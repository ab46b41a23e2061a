package bootstrap

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"newera.app/reentry/internal/entity"
)

const (
	devAdminUsername = "admin"
	devAdminPassword = "admin12345"
)

func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&entity.Referral{}, "Resources", &entity.ReferralResource{}); err != nil {
		return fmt.Errorf("setup referral_resources join table: %w", err)
	}

	return db.AutoMigrate(
		&entity.User{},
		&entity.CaseLoadUser{},
		&entity.Tag{},
		&entity.Resource{},
		&entity.Referral{},
		&entity.ReferralResource{},
		&entity.Notification{},
	)
}

// SeedAdminUser creates the development superuser once.
func SeedAdminUser(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("username = ?", devAdminUsername).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(devAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     devAdminUsername,
		Email:        "admin@newera412.org",
		PasswordHash: string(hashedPasswordBytes),
		Phone:        "4125550100",
		FirstName:    "Site",
		LastName:     "Administrator",
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	logger.Info("admin user seeded",
		zap.String("username", devAdminUsername),
		zap.String("password", devAdminPassword),
	)
	return nil
}
