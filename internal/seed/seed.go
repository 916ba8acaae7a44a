// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"quill/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options controls how much demo data Run generates.
type Options struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
	// SkipBcrypt stores a plain-text password instead of a hash. Dev only;
	// hashing dominates seeding time otherwise.
	SkipBcrypt bool
}

// DefaultOptions returns a small but browsable data set.
func DefaultOptions() Options {
	return Options{
		Users:    12,
		Groups:   4,
		Posts:    120,
		Comments: 300,
		Follows:  20,
	}
}

// Run populates the database with generated users, groups, posts, comments
// and follows. Existing rows are left alone.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	users, err := createUsers(db, opts)
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	groups, err := createGroups(db, opts.Groups)
	if err != nil {
		return fmt.Errorf("seeding groups: %w", err)
	}
	posts, err := createPosts(db, r, users, groups, opts.Posts)
	if err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	if err := createComments(db, r, users, posts, opts.Comments); err != nil {
		return fmt.Errorf("seeding comments: %w", err)
	}
	if err := createFollows(db, r, users, opts.Follows); err != nil {
		return fmt.Errorf("seeding follows: %w", err)
	}

	log.Printf("seeded %d users, %d groups, %d posts, %d comments",
		len(users), len(groups), len(posts), opts.Comments)
	return nil
}

func createUsers(db *gorm.DB, opts Options) ([]*models.User, error) {
	password := "password123"
	if !opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		password = string(hashed)
	}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		users = append(users, &models.User{
			Username: fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), gofakeit.Number(100, 999)),
			Email:    gofakeit.Email(),
			Password: password,
		})
	}
	if err := db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func createGroups(db *gorm.DB, n int) ([]*models.Group, error) {
	groups := make([]*models.Group, 0, n)
	for i := 0; i < n; i++ {
		noun := strings.ToLower(gofakeit.NounAbstract())
		groups = append(groups, &models.Group{
			Title:       gofakeit.BookTitle(),
			Slug:        fmt.Sprintf("%s-%d", noun, gofakeit.Number(10, 99)),
			Description: gofakeit.Sentence(12),
		})
	}
	if err := db.Create(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func createPosts(db *gorm.DB, r *rand.Rand, users []*models.User, groups []*models.Group, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[r.Intn(len(users))]
		post := &models.Post{
			Text:     gofakeit.Paragraph(1, 3, 8, "\n"),
			AuthorID: &author.ID,
			// spread creation over the last 90 days
			CreatedAt: time.Now().Add(-time.Duration(r.Intn(90*24)) * time.Hour),
		}
		// Roughly two thirds of posts belong to a group.
		if len(groups) > 0 && r.Intn(3) != 0 {
			group := groups[r.Intn(len(groups))]
			post.GroupID = &group.ID
		}
		posts = append(posts, post)
	}
	if err := db.Create(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func createComments(db *gorm.DB, r *rand.Rand, users []*models.User, posts []*models.Post, n int) error {
	if len(posts) == 0 || n == 0 {
		return nil
	}
	comments := make([]*models.Comment, 0, n)
	for i := 0; i < n; i++ {
		author := users[r.Intn(len(users))]
		post := posts[r.Intn(len(posts))]
		comments = append(comments, &models.Comment{
			Text:     gofakeit.Sentence(r.Intn(15) + 3),
			AuthorID: &author.ID,
			PostID:   &post.ID,
		})
	}
	return db.Create(&comments).Error
}

func createFollows(db *gorm.DB, r *rand.Rand, users []*models.User, n int) error {
	if len(users) < 2 || n == 0 {
		return nil
	}
	// The schema caps each follower at one follow row, so collisions are
	// dropped the same way the application drops them.
	for i := 0; i < n; i++ {
		follower := users[r.Intn(len(users))]
		author := users[r.Intn(len(users))]
		if follower.ID == author.ID {
			continue
		}
		follow := models.Follow{UserID: follower.ID, AuthorID: author.ID}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&follow).Error; err != nil {
			return err
		}
	}
	return nil
}
