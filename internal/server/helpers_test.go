package server

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		JWTSecret:            "test-secret-key-for-handler-tests",
		Port:                 "0",
		UploadDir:            t.TempDir(),
		IndexCacheTTLSeconds: 20,
		Env:                  "test",
	}
}

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// newTestServer builds a Server over an in-memory database and a fully
// routed Fiber app. A nil redis client makes the page cache pass-through.
func newTestServer(t *testing.T, redisClient *redis.Client) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	db := setupHandlerTestDB(t)
	s, err := NewServerWithDeps(testConfig(t), db, redisClient)
	if err != nil {
		t.Fatalf("NewServerWithDeps: %v", err)
	}
	app := fiber.New()
	s.SetupRoutes(app)
	return s, app, db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, author *models.User, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: &author.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

func decodeJSON(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// signIn attaches a valid session cookie for the user to the request.
func signIn(t *testing.T, s *Server, req *http.Request, user *models.User) {
	t.Helper()
	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: "quill_session", Value: token})
}
