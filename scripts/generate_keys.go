//go:build ignore

// This script generates the secrets for the admin account and the API keys.
// Run with: go run scripts/generate_keys.go <admin-password>
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func generateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", what, err)
	os.Exit(1)
}

func main() {
	if len(os.Args) != 2 || len(os.Args[1]) < 6 {
		fmt.Fprintln(os.Stderr, "usage: go run scripts/generate_keys.go <admin-password (6+ characters)>")
		os.Exit(2)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		fail("password hash", err)
	}

	// 32 bytes = 256 bits, the HS256 key size
	jwtSecret, err := generateSecureKey(32)
	if err != nil {
		fail("JWT secret", err)
	}

	apiKey, err := generateSecureKey(24)
	if err != nil {
		fail("API key", err)
	}

	fmt.Println("Add these to your .env file:")
	fmt.Println()
	fmt.Println("# Admin account")
	fmt.Println("ADMIN_USERNAME=admin")
	// Single quotes keep godotenv from expanding the $ signs of the hash.
	fmt.Printf("ADMIN_PASSWORD_HASH='%s'\n", hash)
	fmt.Printf("JWT_SECRET_KEY=%s\n", jwtSecret)
	fmt.Println()
	fmt.Println("# Quoting endpoints")
	fmt.Println("AUTH_ENABLED=true")
	fmt.Printf("API_KEYS=%s\n", apiKey)
	fmt.Println()
	fmt.Println("Never commit these values to version control.")
}
