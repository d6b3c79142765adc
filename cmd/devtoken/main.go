// Command devtoken mints HS256 bearer tokens for local runs of the API
// with AUTH_MODE=hs256.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/rmdb/internal/utils"
)

func main() {
	_ = godotenv.Load()

	sub := flag.String("sub", "dev-user", "subject claim")
	country := flag.String("country", "", "country claim (checked when AUTH_REQUIRED_COUNTRY is set)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to $JWT_SECRET)")
	flag.Parse()

	extra := map[string]any{"scope": "rmdbapi"}
	if *country != "" {
		extra["country"] = *country
	}
	tok, err := utils.NewAccessToken(*secret, *sub, extra, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
