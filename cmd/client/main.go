package main

import (
	"context"
	"log"
	"os"

	"github.com/awnumar/memguard"
	"github.com/dmitrijs2005/passvault/internal/buildinfo"
	"github.com/dmitrijs2005/passvault/internal/client/cli"
	"github.com/dmitrijs2005/passvault/internal/client/config"
	"github.com/dmitrijs2005/passvault/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:], ".env")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Purge key material on Ctrl+C and on normal exit.
	memguard.CatchInterrupt()
	defer memguard.Purge()

	logger := logging.NewText(os.Stderr, cfg.LogLevel)
	cli.NewApp(cfg, logger).Run(context.Background())
}
