package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/passvault/internal/client/client"
	"github.com/dmitrijs2005/passvault/internal/client/config"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/vault"
)

type App struct {
	config   *config.Config
	api      *client.HTTPClient
	vault    *vault.Vault
	download *http.Client
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp builds the CLI on stdin and stdout.
func NewApp(c *config.Config, logger logging.Logger) *App {
	return newApp(c, logger, os.Stdin, os.Stdout)
}

func newApp(c *config.Config, logger logging.Logger, in io.Reader, out io.Writer) *App {
	api := client.NewHTTPClient(c.ServerURL, c.Token, c.RequestTimeout)
	return &App{
		config:   c,
		api:      api,
		vault:    vault.New(api, vault.NewSession()),
		download: &http.Client{Timeout: c.RequestTimeout},
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run starts the REPL and blocks until the user leaves. The vault is
// locked on return.
func (a *App) Run(ctx context.Context) {
	defer a.vault.Lock()

	fmt.Fprintln(a.out, "Welcome to passvault (type 'help' for commands)")
	if err := a.api.Ping(ctx); err != nil {
		a.logger.Warn(ctx, "server not reachable", "url", a.config.ServerURL, "error", err)
		fmt.Fprintf(a.out, "warning: server %s is not reachable\n", a.config.ServerURL)
	}
	if !a.api.HasToken() {
		fmt.Fprintln(a.out, "No access token configured; run 'login' first")
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) isUnlocked() bool {
	return a.vault.Session().IsUnlocked()
}

func (a *App) getStatus() string {
	switch {
	case !a.api.HasToken():
		return "(no token)"
	case a.isUnlocked():
		return "(unlocked)"
	default:
		return "(locked)"
	}
}

// fail reports err to the user and returns it unchanged.
func (a *App) fail(ctx context.Context, op string, err error) error {
	a.logger.Debug(ctx, "command failed", "command", op, "error", err)
	fmt.Fprintln(a.out, "error:", describe(err))
	return err
}

func describe(err error) string {
	switch {
	case errors.Is(err, vault.ErrLocked):
		return "vault is locked, run 'unlock' first"
	case errors.Is(err, vault.ErrNotSetUp):
		return "vault is not set up, run 'setup' first"
	case errors.Is(err, vault.ErrAlreadySetUp):
		return "vault is already set up, run 'unlock'"
	case errors.Is(err, vault.ErrWrongPassword):
		return "wrong master password"
	case errors.Is(err, common.ErrorUnauthenticated):
		return "access token rejected, run 'login' with a valid token"
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrorNotFound):
		return "no such entry"
	case errors.Is(err, cryptox.ErrMissingMaterial):
		return "entry is corrupt: encryption data is missing, re-enter it with 'edit <id>'"
	case errors.Is(err, cryptox.ErrAuthenticationFailure):
		return "entry cannot be decrypted with this key"
	default:
		return err.Error()
	}
}
