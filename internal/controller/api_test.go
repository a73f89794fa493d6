package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mailmaster_backend/internal/controller"
	"mailmaster_backend/internal/middleware"
	"mailmaster_backend/internal/model"
	"mailmaster_backend/internal/repository"
	"mailmaster_backend/pkg/utils/jwt"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	jwt.Init("test-secret")

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

	userRepo := &repository.UserRepository{DB: db}
	tokenRepo := &repository.AccessTokenRepository{DB: db}
	newsletterRepo := &repository.NewsletterRepository{DB: db}
	subscriberRepo := &repository.SubscriberRepository{DB: db}
	campaignRepo := &repository.CampaignRepository{DB: db}

	auth := &controller.AuthController{Users: userRepo, Tokens: tokenRepo}
	newsletters := &controller.NewsletterController{Newsletters: newsletterRepo}
	subscribers := &controller.SubscriberController{Subscribers: subscriberRepo}
	campaigns := &controller.CampaignController{
		Campaigns:   campaignRepo,
		Newsletters: newsletterRepo,
		Subscribers: subscriberRepo,
	}

	app := fiber.New()

	api := app.Group("/api")
	api.Post("/register", auth.Register)
	api.Post("/login", auth.Login)

	protected := api.Group("/", middleware.AuthMiddleware(tokenRepo))
	protected.Post("/logout", auth.Logout)
	protected.Get("/me", auth.Me)
	protected.Get("/user", auth.Me)

	n := protected.Group("/newsletters")
	n.Get("/", newsletters.List)
	n.Post("/", newsletters.Create)
	n.Get("/:id", newsletters.Get)
	n.Put("/:id", newsletters.Update)
	n.Delete("/:id", newsletters.Delete)

	s := protected.Group("/subscribers")
	s.Get("/", subscribers.List)
	s.Post("/", subscribers.Create)
	s.Get("/:id", subscribers.Get)
	s.Put("/:id", subscribers.Update)
	s.Delete("/:id", subscribers.Delete)

	cg := protected.Group("/campaigns")
	cg.Get("/", campaigns.List)
	cg.Post("/", campaigns.Create)
	cg.Get("/:id", campaigns.Get)
	cg.Put("/:id", campaigns.Update)
	cg.Delete("/:id", campaigns.Delete)

	app.Get("/t/campaigns/:id/subscribers/:subscriber_id/open", campaigns.TrackOpen)

	return app
}

func request(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func requestList(t *testing.T, app *fiber.App, path, token string) (int, []interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	out := []interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func registerUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	status, body := request(t, app, http.MethodPost, "/api/register", "", map[string]interface{}{
		"name":                  "Test User",
		"email":                 email,
		"password":              "secret-password",
		"password_confirmation": "secret-password",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%v)", email, status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register %s returned no token", email)
	}
	return token
}

func idOf(t *testing.T, body map[string]interface{}) uint {
	t.Helper()

	id, ok := body["id"].(float64)
	if !ok {
		t.Fatalf("response has no numeric id: %v", body)
	}
	return uint(id)
}

func TestRegisterLoginMe(t *testing.T) {
	app := setupApp(t)

	token := registerUser(t, app, "u1@example.com")

	status, body := request(t, app, http.MethodGet, "/api/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: expected 200, got %d (%v)", status, body)
	}
	if body["email"] != "u1@example.com" {
		t.Fatalf("me returned wrong email: %v", body["email"])
	}
	if _, leaked := body["password"]; leaked {
		t.Fatal("password must never be serialized")
	}

	status, body = request(t, app, http.MethodPost, "/api/login", "", map[string]interface{}{
		"email": "u1@example.com", "password": "secret-password",
	})
	if tok, _ := body["token"].(string); status != http.StatusOK || tok == "" {
		t.Fatalf("login: expected 200 with token, got %d (%v)", status, body)
	}

	// unknown email and wrong password must be indistinguishable
	status, wrongPass := request(t, app, http.MethodPost, "/api/login", "", map[string]interface{}{
		"email": "u1@example.com", "password": "nope-nope-nope",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", status)
	}
	status, unknown := request(t, app, http.MethodPost, "/api/login", "", map[string]interface{}{
		"email": "ghost@example.com", "password": "secret-password",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("unknown email: expected 401, got %d", status)
	}
	if wrongPass["message"] != unknown["message"] {
		t.Fatalf("credential errors differ: %v vs %v", wrongPass["message"], unknown["message"])
	}
}

func TestRegisterValidation(t *testing.T) {
	app := setupApp(t)

	status, body := request(t, app, http.MethodPost, "/api/register", "", map[string]interface{}{
		"name":                  "Test User",
		"email":                 "u1@example.com",
		"password":              "secret-password",
		"password_confirmation": "different",
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("mismatched confirmation: expected 422, got %d (%v)", status, body)
	}
	errs, _ := body["errors"].(map[string]interface{})
	if _, ok := errs["password_confirmation"]; !ok {
		t.Fatalf("expected password_confirmation error, got %v", errs)
	}

	registerUser(t, app, "u1@example.com")
	status, body = request(t, app, http.MethodPost, "/api/register", "", map[string]interface{}{
		"name":                  "Imposter",
		"email":                 "u1@example.com",
		"password":              "secret-password",
		"password_confirmation": "secret-password",
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate email: expected 422, got %d (%v)", status, body)
	}
}

func TestLogoutRevokesAllTokens(t *testing.T) {
	app := setupApp(t)

	token1 := registerUser(t, app, "u1@example.com")
	status, body := request(t, app, http.MethodPost, "/api/login", "", map[string]interface{}{
		"email": "u1@example.com", "password": "secret-password",
	})
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", status)
	}
	token2 := body["token"].(string)

	if status, _ := request(t, app, http.MethodPost, "/api/logout", token1, nil); status != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", status)
	}

	// both sessions are dead, not just the one that logged out
	if status, _ := request(t, app, http.MethodGet, "/api/me", token1, nil); status != http.StatusUnauthorized {
		t.Fatalf("token1 after logout: expected 401, got %d", status)
	}
	if status, _ := request(t, app, http.MethodGet, "/api/me", token2, nil); status != http.StatusUnauthorized {
		t.Fatalf("token2 after logout: expected 401, got %d", status)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	app := setupApp(t)

	if status, _ := request(t, app, http.MethodGet, "/api/me", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", status)
	}
	if status, _ := request(t, app, http.MethodGet, "/api/me", "not-a-token", nil); status != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", status)
	}
}

func TestNewsletterRoundTripOverHTTP(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "u1@example.com")

	status, created := request(t, app, http.MethodPost, "/api/newsletters", token, map[string]interface{}{
		"title": "Tech Updates", "content": "Latest news in tech.",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%v)", status, created)
	}
	id := idOf(t, created)

	status, got := request(t, app, http.MethodGet, fmt.Sprintf("/api/newsletters/%d", id), token, nil)
	if status != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", status)
	}
	if got["title"] != "Tech Updates" || got["content"] != "Latest news in tech." {
		t.Fatalf("round trip mismatch: %v", got)
	}
	if got["user_id"] == nil {
		t.Fatalf("response missing user_id: %v", got)
	}

	// content is optional on update and survives when omitted
	status, updated := request(t, app, http.MethodPut, fmt.Sprintf("/api/newsletters/%d", id), token, map[string]interface{}{
		"title": "Renamed",
	})
	if status != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%v)", status, updated)
	}
	if updated["title"] != "Renamed" || updated["content"] != "Latest news in tech." {
		t.Fatalf("update mismatch: %v", updated)
	}

	status, _ = request(t, app, http.MethodDelete, fmt.Sprintf("/api/newsletters/%d", id), token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", status)
	}
	status, _ = request(t, app, http.MethodGet, fmt.Sprintf("/api/newsletters/%d", id), token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", status)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	app := setupApp(t)
	tokenA := registerUser(t, app, "a@example.com")
	tokenB := registerUser(t, app, "b@example.com")

	_, created := request(t, app, http.MethodPost, "/api/newsletters", tokenA, map[string]interface{}{
		"title": "Private", "content": "Owner only.",
	})
	id := idOf(t, created)
	path := fmt.Sprintf("/api/newsletters/%d", id)

	if status, _ := request(t, app, http.MethodGet, path, tokenB, nil); status != http.StatusNotFound {
		t.Fatalf("foreign get: expected 404, got %d", status)
	}
	if status, _ := request(t, app, http.MethodPut, path, tokenB, map[string]interface{}{"title": "Hijack"}); status != http.StatusNotFound {
		t.Fatalf("foreign update: expected 404, got %d", status)
	}
	if status, _ := request(t, app, http.MethodDelete, path, tokenB, nil); status != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", status)
	}

	status, list := requestList(t, app, "/api/newsletters", tokenB)
	if status != http.StatusOK || len(list) != 0 {
		t.Fatalf("foreign list: expected empty 200, got %d with %d rows", status, len(list))
	}
}

func TestSubscriberEmailUniqueAcrossOwnersOverHTTP(t *testing.T) {
	app := setupApp(t)
	tokenA := registerUser(t, app, "a@example.com")
	tokenB := registerUser(t, app, "b@example.com")

	status, _ := request(t, app, http.MethodPost, "/api/subscribers", tokenA, map[string]interface{}{
		"email": "shared@example.com", "name": "First",
	})
	if status != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", status)
	}

	status, body := request(t, app, http.MethodPost, "/api/subscribers", tokenB, map[string]interface{}{
		"email": "shared@example.com", "name": "Second",
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("cross-owner duplicate: expected 422, got %d (%v)", status, body)
	}
}

func TestCampaignInvalidNewsletterCreatesNoRow(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "u1@example.com")

	status, body := request(t, app, http.MethodPost, "/api/campaigns", token, map[string]interface{}{
		"subject": "Orphan", "content": "Body", "newsletter_id": 999999,
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (%v)", status, body)
	}
	errs, _ := body["errors"].(map[string]interface{})
	if _, ok := errs["newsletter_id"]; !ok {
		t.Fatalf("expected newsletter_id error, got %v", errs)
	}

	status, list := requestList(t, app, "/api/campaigns", token)
	if status != http.StatusOK || len(list) != 0 {
		t.Fatalf("expected no campaign rows, got %d with %d rows", status, len(list))
	}
}

func TestCampaignScenario(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "u1@example.com")

	_, newsletter := request(t, app, http.MethodPost, "/api/newsletters", token, map[string]interface{}{
		"title": "Tech Updates", "content": "Latest news in tech.",
	})
	newsletterID := idOf(t, newsletter)

	status, subscriber := request(t, app, http.MethodPost, "/api/subscribers", token, map[string]interface{}{
		"email": "a@x.com", "name": "S1",
	})
	if status != http.StatusCreated {
		t.Fatalf("subscriber create: expected 201, got %d", status)
	}
	subscriberID := idOf(t, subscriber)

	// status omitted: the campaign must come back as a draft
	status, campaign := request(t, app, http.MethodPost, "/api/campaigns", token, map[string]interface{}{
		"subject":        "Welcome Series",
		"content":        "Welcome to our community!",
		"newsletter_id":  newsletterID,
		"subscriber_ids": []uint{subscriberID},
	})
	if status != http.StatusCreated {
		t.Fatalf("campaign create: expected 201, got %d (%v)", status, campaign)
	}
	campaignID := idOf(t, campaign)

	status, got := request(t, app, http.MethodGet, fmt.Sprintf("/api/campaigns/%d", campaignID), token, nil)
	if status != http.StatusOK {
		t.Fatalf("campaign get: expected 200, got %d", status)
	}
	if got["status"] != "draft" {
		t.Fatalf("expected status draft, got %v", got["status"])
	}
	subs, _ := got["subscribers"].([]interface{})
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscriber, got %d", len(subs))
	}
	first := subs[0].(map[string]interface{})
	if first["email"] != "a@x.com" || first["opened"] != false {
		t.Fatalf("unexpected subscriber state: %v", first)
	}

	// open-tracking pixel flips the pair, and only the pair
	pixel := fmt.Sprintf("/t/campaigns/%d/subscribers/%d/open", campaignID, subscriberID)
	if status, _ := request(t, app, http.MethodGet, pixel, "", nil); status != http.StatusNoContent {
		t.Fatalf("pixel: expected 204, got %d", status)
	}
	_, got = request(t, app, http.MethodGet, fmt.Sprintf("/api/campaigns/%d", campaignID), token, nil)
	subs, _ = got["subscribers"].([]interface{})
	first = subs[0].(map[string]interface{})
	if first["opened"] != true || first["opened_at"] == nil {
		t.Fatalf("expected opened pair after pixel hit: %v", first)
	}

	// a pixel for a pair that doesn't exist answers 204 all the same
	ghost := fmt.Sprintf("/t/campaigns/%d/subscribers/%d/open", campaignID, 999999)
	if status, _ := request(t, app, http.MethodGet, ghost, "", nil); status != http.StatusNoContent {
		t.Fatalf("ghost pixel: expected 204, got %d", status)
	}
}

func TestCampaignUpdateReplacesAllFields(t *testing.T) {
	app := setupApp(t)
	token := registerUser(t, app, "u1@example.com")

	_, newsletter := request(t, app, http.MethodPost, "/api/newsletters", token, map[string]interface{}{
		"title": "Tech Updates", "content": "Latest news in tech.",
	})
	newsletterID := idOf(t, newsletter)

	_, campaign := request(t, app, http.MethodPost, "/api/campaigns", token, map[string]interface{}{
		"subject": "Before", "content": "Old body", "newsletter_id": newsletterID,
	})
	campaignID := idOf(t, campaign)

	// update without status is rejected; create tolerates the omission
	status, body := request(t, app, http.MethodPut, fmt.Sprintf("/api/campaigns/%d", campaignID), token, map[string]interface{}{
		"subject": "After", "content": "New body", "newsletter_id": newsletterID,
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("update without status: expected 422, got %d (%v)", status, body)
	}

	status, updated := request(t, app, http.MethodPut, fmt.Sprintf("/api/campaigns/%d", campaignID), token, map[string]interface{}{
		"subject":       "After",
		"content":       "New body",
		"newsletter_id": newsletterID,
		"status":        "sent",
		"sent_at":       "2026-04-16T14:00:00Z",
	})
	if status != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%v)", status, updated)
	}
	if updated["subject"] != "After" || updated["status"] != "sent" || updated["sent_at"] == nil {
		t.Fatalf("update mismatch: %v", updated)
	}

	// any status move is allowed, including sent back to draft
	status, reverted := request(t, app, http.MethodPut, fmt.Sprintf("/api/campaigns/%d", campaignID), token, map[string]interface{}{
		"subject":       "After",
		"content":       "New body",
		"newsletter_id": newsletterID,
		"status":        "draft",
	})
	if status != http.StatusOK || reverted["status"] != "draft" {
		t.Fatalf("revert: expected 200 draft, got %d (%v)", status, reverted)
	}
	if reverted["sent_at"] != nil {
		t.Fatalf("omitted sent_at must clear the stored value, got %v", reverted["sent_at"])
	}
}
