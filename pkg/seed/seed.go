package seed

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mailmaster_backend/internal/model"
)

// SeedDemoData creates a demo account with one newsletter, two subscribers
// and a draft campaign addressed to both. FirstOrCreate keeps reruns harmless.
func SeedDemoData(db *gorm.DB) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing demo password: %v", err)
		return
	}

	user := model.User{
		Name:     "Demo User",
		Email:    "demo@mailmaster.test",
		Password: string(hashed),
	}
	if err := db.Where(model.User{Email: user.Email}).FirstOrCreate(&user).Error; err != nil {
		log.Printf("Error creating demo user: %v", err)
		return
	}

	newsletter := model.Newsletter{
		Title:   "Product Updates",
		Content: "Monthly roundup of everything we shipped.",
		UserID:  user.ID,
	}
	if err := db.Where(model.Newsletter{Title: newsletter.Title, UserID: user.ID}).
		FirstOrCreate(&newsletter).Error; err != nil {
		log.Printf("Error creating demo newsletter: %v", err)
		return
	}

	subscribers := []model.Subscriber{
		{Email: "alice@example.com", Name: "Alice", UserID: user.ID},
		{Email: "bob@example.com", Name: "Bob", UserID: user.ID},
	}
	for i := range subscribers {
		if err := db.Where(model.Subscriber{Email: subscribers[i].Email}).
			FirstOrCreate(&subscribers[i]).Error; err != nil {
			log.Printf("Error creating demo subscriber %s: %v", subscribers[i].Email, err)
			return
		}
	}

	campaign := model.Campaign{
		Subject:      "Welcome to Product Updates",
		Content:      newsletter.Content,
		NewsletterID: newsletter.ID,
		UserID:       user.ID,
		Status:       model.CampaignStatusDraft,
	}
	if err := db.Where(model.Campaign{Subject: campaign.Subject, UserID: user.ID}).
		FirstOrCreate(&campaign).Error; err != nil {
		log.Printf("Error creating demo campaign: %v", err)
		return
	}

	for _, subscriber := range subscribers {
		pair := model.CampaignSubscriber{CampaignID: campaign.ID, SubscriberID: subscriber.ID}
		if err := db.Where(model.CampaignSubscriber{CampaignID: campaign.ID, SubscriberID: subscriber.ID}).
			FirstOrCreate(&pair).Error; err != nil {
			log.Printf("Error attaching demo subscriber: %v", err)
			return
		}
	}

	log.Println("Demo data seeded successfully!")
}
