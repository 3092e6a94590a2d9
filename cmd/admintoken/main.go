package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmdbreizh/site-backend/internal/tokens"
)

// Mints a bearer token for the admin review listing. The secret comes from
// ADMIN_JWT_SECRET, same as the server.
func main() {
	subject := flag.String("sub", "admin", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("ADMIN_JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_JWT_SECRET is required")
		os.Exit(1)
	}

	token, err := tokens.GenerateAdminToken(secret, *subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
