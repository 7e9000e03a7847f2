package main

import (
	"flag"
	"log"

	"stockcast-api/internal/config"
	"stockcast-api/internal/model"
	"stockcast-api/pkg/database"

	"github.com/joho/godotenv"
)

// Ops helper: creates a local email/password account without going through
// the HTTP API.
func main() {
	email := flag.String("email", "", "account email (required)")
	password := flag.String("password", "", "account password (required)")
	name := flag.String("name", "", "display name (defaults to email)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("usage: create-user -email <email> -password <password> [-name <name>]")
	}
	if *name == "" {
		*name = *email
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Load()

	// 2. Setup Database
	db := database.ConnectDB(cfg.DatabaseURL)

	// 3. Refuse duplicates
	var existing model.User
	if err := db.Where("email = ?", *email).First(&existing).Error; err == nil {
		log.Fatalf("User %s already exists", *email)
	}

	// 4. Create
	user := &model.User{
		Email:        *email,
		Name:         *name,
		AuthProvider: model.AuthProviderLocal,
	}
	if err := user.SetPassword(*password); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if err := db.Create(user).Error; err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	log.Printf("User created: %s (%s)", user.Email, user.ID)
}
