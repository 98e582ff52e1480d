package db

import (
	"github.com/jypark/reviewmoa-backend/internal/app/model"
	"github.com/jypark/reviewmoa-backend/pkg/logger"
	"github.com/jypark/reviewmoa-backend/pkg/util"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Product{},
		&model.Review{},
		&model.UserReviewEdge{},
		&model.ReviewProductEdge{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	// 운영 계정 생성 (권한은 별도 채널로만 부여되므로 시드에서 만든다)
	if err := seedOperatorAccounts(); err != nil {
		logger.Error("Failed to seed operator accounts", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedOperatorAccounts admin/manager 기본 계정 생성
func seedOperatorAccounts() error {
	accounts := []struct {
		email    string
		name     string
		password string
		role     model.UserRole
	}{
		{"admin@reviewmoa.local", "운영 관리자", "admin1234!", model.RoleAdmin},
		{"manager@reviewmoa.local", "상품 관리자", "manager1234!", model.RoleManager},
	}

	for _, acc := range accounts {
		var count int64
		if err := DB.Model(&model.User{}).Where("email = ?", acc.email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		hash, err := util.HashPassword(acc.password)
		if err != nil {
			return err
		}

		user := model.User{
			Email:        acc.email,
			PasswordHash: hash,
			Name:         acc.name,
			Role:         acc.role,
		}
		if err := DB.Create(&user).Error; err != nil {
			logger.Error("Failed to create operator account", err, map[string]interface{}{
				"email": acc.email,
			})
			return err
		}

		logger.Info("Operator account created", map[string]interface{}{
			"email": acc.email,
			"role":  acc.role,
		})
	}

	return nil
}
