package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"mailmaster_backend/internal/controller"
	"mailmaster_backend/internal/middleware"
	"mailmaster_backend/internal/model"
	"mailmaster_backend/internal/repository"
	"mailmaster_backend/pkg/config"
	"mailmaster_backend/pkg/database"
	"mailmaster_backend/pkg/seed"
	"mailmaster_backend/pkg/utils/jwt"
)

type controllers struct {
	auth        *controller.AuthController
	newsletters *controller.NewsletterController
	subscribers *controller.SubscriberController
	campaigns   *controller.CampaignController
	tokens      *repository.AccessTokenRepository
}

func setupRoutes(app *fiber.App, ctl controllers) {
	api := app.Group("/api")

	// Auth routes
	api.Post("/register", ctl.auth.Register)
	api.Post("/login", ctl.auth.Login)

	// Protected routes
	protected := api.Group("/", middleware.AuthMiddleware(ctl.tokens))
	protected.Post("/logout", ctl.auth.Logout)
	protected.Get("/me", ctl.auth.Me)
	protected.Get("/user", ctl.auth.Me)

	newsletters := protected.Group("/newsletters")
	newsletters.Get("/", ctl.newsletters.List)
	newsletters.Post("/", ctl.newsletters.Create)
	newsletters.Get("/:id", ctl.newsletters.Get)
	newsletters.Put("/:id", ctl.newsletters.Update)
	newsletters.Delete("/:id", ctl.newsletters.Delete)

	subscribers := protected.Group("/subscribers")
	subscribers.Get("/", ctl.subscribers.List)
	subscribers.Post("/", ctl.subscribers.Create)
	subscribers.Get("/:id", ctl.subscribers.Get)
	subscribers.Put("/:id", ctl.subscribers.Update)
	subscribers.Delete("/:id", ctl.subscribers.Delete)

	campaigns := protected.Group("/campaigns")
	campaigns.Get("/", ctl.campaigns.List)
	campaigns.Post("/", ctl.campaigns.Create)
	campaigns.Get("/:id", ctl.campaigns.Get)
	campaigns.Put("/:id", ctl.campaigns.Update)
	campaigns.Delete("/:id", ctl.campaigns.Delete)

	// Public open-tracking pixel, hit from inside delivered mail
	tracking := app.Group("/t")
	tracking.Get("/campaigns/:id/subscribers/:subscriber_id/open", ctl.campaigns.TrackOpen)
}

func main() {
	cfg := config.Load()
	jwt.Init(cfg.JWT.Secret)

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
		&model.User{},
		&model.AccessToken{},
		&model.Newsletter{},
		&model.Subscriber{},
		&model.Campaign{},
		&model.CampaignSubscriber{},
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	if cfg.Seed.DemoData {
		seed.SeedDemoData(database.GetDB())
	}

	db := database.GetDB()
	userRepo := &repository.UserRepository{DB: db}
	tokenRepo := &repository.AccessTokenRepository{DB: db}
	newsletterRepo := &repository.NewsletterRepository{DB: db}
	subscriberRepo := &repository.SubscriberRepository{DB: db}
	campaignRepo := &repository.CampaignRepository{DB: db}

	ctl := controllers{
		auth:        &controller.AuthController{Users: userRepo, Tokens: tokenRepo},
		newsletters: &controller.NewsletterController{Newsletters: newsletterRepo},
		subscribers: &controller.SubscriberController{Subscribers: subscriberRepo},
		campaigns: &controller.CampaignController{
			Campaigns:   campaignRepo,
			Newsletters: newsletterRepo,
			Subscribers: subscriberRepo,
		},
		tokens: tokenRepo,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	setupRoutes(app, ctl)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
