// Command seed populates the database with generated demo data.
package main

import (
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of users to create")
	flag.IntVar(&opts.Groups, "groups", opts.Groups, "number of groups to create")
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "number of posts to create")
	flag.IntVar(&opts.Comments, "comments", opts.Comments, "number of comments to create")
	flag.IntVar(&opts.Follows, "follows", opts.Follows, "number of follow relationships to create")
	flag.BoolVar(&opts.SkipBcrypt, "skip-bcrypt", false, "store plain-text passwords (dev only, much faster)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
