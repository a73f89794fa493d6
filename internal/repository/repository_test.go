package repository

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mailmaster_backend/internal/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	// one shared in-memory database per test, named after the test
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database failed: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.AccessToken{},
		&model.Newsletter{},
		&model.Subscriber{},
		&model.Campaign{},
		&model.CampaignSubscriber{},
	)
	if err != nil {
		t.Fatalf("migrating test database failed: %v", err)
	}

	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := model.User{Name: "Test User", Email: email, Password: "hashed"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("creating user %s failed: %v", email, err)
	}
	return &user
}

func createNewsletter(t *testing.T, db *gorm.DB, userID uint) *model.Newsletter {
	t.Helper()

	newsletter := model.Newsletter{Title: "Tech Updates", Content: "Latest news in tech.", UserID: userID}
	if err := db.Create(&newsletter).Error; err != nil {
		t.Fatalf("creating newsletter failed: %v", err)
	}
	return &newsletter
}

func createSubscriber(t *testing.T, db *gorm.DB, userID uint, email string) *model.Subscriber {
	t.Helper()

	subscriber := model.Subscriber{Email: email, Name: "Subscriber", UserID: userID}
	if err := db.Create(&subscriber).Error; err != nil {
		t.Fatalf("creating subscriber %s failed: %v", email, err)
	}
	return &subscriber
}

func createCampaign(t *testing.T, db *gorm.DB, userID, newsletterID uint) *model.Campaign {
	t.Helper()

	campaign := model.Campaign{
		Subject:      "Welcome Series",
		Content:      "Welcome to our community!",
		NewsletterID: newsletterID,
		UserID:       userID,
		Status:       model.CampaignStatusDraft,
	}
	if err := db.Create(&campaign).Error; err != nil {
		t.Fatalf("creating campaign failed: %v", err)
	}
	return &campaign
}

func pairCount(t *testing.T, db *gorm.DB, campaignID uint) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&model.CampaignSubscriber{}).Where("campaign_id = ?", campaignID).Count(&count).Error; err != nil {
		t.Fatalf("counting pairs failed: %v", err)
	}
	return count
}
