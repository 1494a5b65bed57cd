// Command devtoken mints a bearer token for local development, standing in
// for the identity provider. It reads the signing secret the same way the
// server does (.env, PASSVAULT_SECRET_KEY, -c file, -s flag).
//
//	devtoken -id alice -ttl 24h
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/flagx"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, w io.Writer) error {
	cfg, err := config.LoadConfig(args, ".env")
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	var (
		userID string
		ttl    time.Duration
	)
	fs := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&userID, "id", "", "user id (random when empty)")
	fs.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-id", "-ttl"})); err != nil {
		return err
	}

	if userID == "" {
		suffix, err := common.MakeRandHexString(4)
		if err != nil {
			return err
		}
		userID = "dev-" + suffix
	}

	token, err := auth.GenerateToken(userID, []byte(cfg.SecretKey), ttl)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "user: %s\n%s\n", userID, token)
	return nil
}
