package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"Postboard/internal/auth"
)

// devtoken mints an HS256 bearer token for local testing
// The secret is read from AUTH_JWT_SECRET (a .env file is honored)
//
// Usage:
//
//	go run ./cmd/devtoken -user 1 -ttl 24h
func main() {
	userID := flag.Int64("user", 1, "user ID to place in the 'sub' claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	issuer := flag.String("issuer", "", "issuer claim (defaults to AUTH_ISSUER)")
	flag.Parse()

	_ = godotenv.Load()

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		log.Fatal("AUTH_JWT_SECRET must be set")
	}
	if *issuer == "" {
		*issuer = os.Getenv("AUTH_ISSUER")
	}

	token, err := auth.IssueHS256([]byte(secret), *userID, *issuer, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Println(token)
}
