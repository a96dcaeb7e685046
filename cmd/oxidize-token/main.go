// Command oxidize-token mints a session token from a user's private key
// PEM. The server never holds private keys, so this is what a client does
// before calling any guarded endpoint.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/troindx/oxidize/internal/auth"
	"github.com/troindx/oxidize/internal/config"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	userID := flag.String("user", "", "user id (token subject)")
	keyPath := flag.String("key", "", "path to the private key PEM")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	flag.Parse()

	if *userID == "" || *keyPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.New(&logger)
	if *ttl == 0 {
		*ttl = cfg.TokenTTL
	}

	pem, err := os.ReadFile(*keyPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read private key")
	}

	authn := auth.NewAuthenticator(cfg.AppBaseURL)
	token, err := authn.IssueToken(*userID, pem, *ttl)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to sign token")
	}

	fmt.Println(token)
}
