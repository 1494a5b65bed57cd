package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/filex"
	"github.com/dmitrijs2005/passvault/internal/netx"
	"github.com/dmitrijs2005/passvault/internal/vault"
)

// generatedPasswordBytes is the entropy of a generated password; the
// password itself is twice as long in hex.
const generatedPasswordBytes = 12

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errCancelled        = errors.New("cancelled")
)

// newPassword is a test seam for password generation.
var newPassword = func() (string, error) {
	return common.MakeRandHexString(generatedPasswordBytes)
}

func (a *App) Status(ctx context.Context) error {
	if !a.api.HasToken() {
		fmt.Fprintln(a.out, "Vault: unknown (no access token)")
		return nil
	}
	st, err := a.vault.Status(ctx)
	if err != nil {
		return a.fail(ctx, "status", err)
	}
	fmt.Fprintf(a.out, "Vault: %s\nServer: %s\n", st, a.config.ServerURL)
	return nil
}

// Login replaces the access token. The vault is locked because the new
// token may belong to another user.
func (a *App) Login(ctx context.Context) error {
	token, err := GetPassword("Access token", a.out)
	if err != nil {
		return a.fail(ctx, "login", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return a.fail(ctx, "login", fmt.Errorf("%w: empty token", common.ErrorValidation))
	}
	a.vault.Lock()
	a.api.SetToken(token)

	st, err := a.vault.Status(ctx)
	if err != nil {
		return a.fail(ctx, "login", err)
	}
	fmt.Fprintf(a.out, "Token accepted, vault is %s\n", st)
	return nil
}

func (a *App) Setup(ctx context.Context) error {
	pw, err := GetPassword("Choose master password", a.out)
	if err != nil {
		return a.fail(ctx, "setup", err)
	}
	again, err := GetPassword("Repeat master password", a.out)
	if err != nil {
		return a.fail(ctx, "setup", err)
	}
	if pw != again {
		return a.fail(ctx, "setup", errPasswordMismatch)
	}
	if err := a.vault.Setup(ctx, pw); err != nil {
		return a.fail(ctx, "setup", err)
	}
	fmt.Fprintln(a.out, "Vault created and unlocked")
	return nil
}

func (a *App) Unlock(ctx context.Context) error {
	pw, err := GetPassword("Master password", a.out)
	if err != nil {
		return a.fail(ctx, "unlock", err)
	}
	if err := a.vault.Unlock(ctx, pw); err != nil {
		return a.fail(ctx, "unlock", err)
	}
	fmt.Fprintln(a.out, "Vault unlocked")
	return nil
}

func (a *App) Lock(ctx context.Context) error {
	a.vault.Lock()
	fmt.Fprintln(a.out, "Vault locked")
	return nil
}

func (a *App) Add(ctx context.Context) error {
	if !a.isUnlocked() {
		return a.fail(ctx, "add", vault.ErrLocked)
	}
	in, err := a.inputCredential(nil)
	if err != nil {
		return a.fail(ctx, "add", err)
	}
	id, err := a.vault.Add(ctx, in)
	if err != nil {
		return a.fail(ctx, "add", err)
	}
	fmt.Fprintln(a.out, "Added", id)
	return nil
}

func (a *App) List(ctx context.Context, category string) error {
	entries, err := a.vault.List(ctx)
	if err != nil {
		return a.fail(ctx, "list", err)
	}

	category = strings.ToLower(category)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWEBSITE\tUSERNAME\tCATEGORY\t")
	n := 0
	for _, e := range entries {
		if category != "" && e.Category != category {
			continue
		}
		mark := ""
		if e.Err != nil {
			mark = "(unreadable)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Website, e.Username, e.Category, mark)
		n++
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d entries\n", n)
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	id, err := a.entryID(id)
	if err != nil {
		return a.fail(ctx, "show", err)
	}
	e, err := a.vault.Reveal(ctx, id)
	if err != nil {
		return a.fail(ctx, "show", err)
	}

	fmt.Fprintf(a.out, "Website:  %s\n", e.Website)
	fmt.Fprintf(a.out, "Username: %s\n", e.Username)
	fmt.Fprintf(a.out, "Password: %s\n", e.Password)
	fmt.Fprintf(a.out, "Category: %s\n", e.Category)
	if e.Notes != nil {
		fmt.Fprintf(a.out, "Notes:    %s\n", *e.Notes)
	}
	fmt.Fprintf(a.out, "Updated:  %s\n", e.UpdatedAt.Local().Format(time.DateTime))
	return nil
}

func (a *App) Edit(ctx context.Context, id string) error {
	id, err := a.entryID(id)
	if err != nil {
		return a.fail(ctx, "edit", err)
	}
	current, err := a.vault.Find(ctx, id)
	if err != nil {
		return a.fail(ctx, "edit", err)
	}
	if current.Err != nil {
		// only a record without encryption data can be re-entered
		if !errors.Is(current.Err, cryptox.ErrMissingMaterial) {
			return a.fail(ctx, "edit", current.Err)
		}
		fmt.Fprintln(a.out, "The stored password is unreadable; enter a new one")
	}
	in, err := a.inputCredential(current)
	if err != nil {
		return a.fail(ctx, "edit", err)
	}
	if err := a.vault.Edit(ctx, id, in); err != nil {
		return a.fail(ctx, "edit", err)
	}
	fmt.Fprintln(a.out, "Updated", id)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if !a.isUnlocked() {
		return a.fail(ctx, "delete", vault.ErrLocked)
	}
	id, err := a.entryID(id)
	if err != nil {
		return a.fail(ctx, "delete", err)
	}
	ok, err := Confirm(a.reader, "Delete "+id+"?", a.out)
	if err != nil {
		return a.fail(ctx, "delete", err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Nothing deleted")
		return errCancelled
	}
	if err := a.vault.Delete(ctx, id); err != nil {
		return a.fail(ctx, "delete", err)
	}
	fmt.Fprintln(a.out, "Deleted", id)
	return nil
}

// Backup asks the server for an encrypted snapshot and downloads it into
// the configured backup directory.
func (a *App) Backup(ctx context.Context) error {
	receipt, err := a.api.ExportBackup(ctx)
	if err != nil {
		return a.fail(ctx, "backup", err)
	}
	fmt.Fprintf(a.out, "Backup stored as %s\n", receipt.Key)

	dir, err := filex.EnsureDir(a.config.BackupDir)
	if err != nil {
		return a.fail(ctx, "backup", err)
	}
	f, err := filex.CreateNew(dir, path.Base(receipt.Key))
	if err != nil {
		return a.fail(ctx, "backup", err)
	}
	n, err := netx.DownloadPresignedURL(ctx, a.download, receipt.URL, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return a.fail(ctx, "backup", err)
	}

	a.logger.Info(ctx, "backup downloaded", "key", receipt.Key, "bytes", n)
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", n, f.Name())
	return nil
}

func (a *App) entryID(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	id, err := GetSimpleText(a.reader, "Entry ID", a.out)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w: entry id is required", common.ErrorValidation)
	}
	return id, nil
}

// inputCredential prompts for every field. With a current entry, an empty
// answer keeps the current value and "-" clears the notes.
func (a *App) inputCredential(current *vault.Entry) (vault.CredentialInput, error) {
	var in vault.CredentialInput
	if current != nil {
		in = vault.CredentialInput{
			Website:  current.Website,
			Username: current.Username,
			Password: current.Password,
			Category: current.Category,
			Notes:    current.Notes,
		}
	}

	website, err := GetSimpleText(a.reader, withDefault("Website", in.Website), a.out)
	if err != nil {
		return in, err
	}
	if website != "" {
		in.Website = website
	}

	username, err := GetSimpleText(a.reader, withDefault("Username", in.Username), a.out)
	if err != nil {
		return in, err
	}
	if username != "" {
		in.Username = username
	}

	lost := current != nil && current.Err != nil
	passwordPrompt := "Password (empty to generate)"
	switch {
	case lost:
		passwordPrompt = "New password"
	case current != nil:
		passwordPrompt = "Password (empty to keep)"
	}
	password, err := GetPassword(passwordPrompt, a.out)
	if err != nil {
		return in, err
	}
	switch {
	case password != "":
		in.Password = password
	case lost:
		return in, fmt.Errorf("%w: a new password is required", common.ErrorValidation)
	case current == nil:
		if in.Password, err = newPassword(); err != nil {
			return in, err
		}
		fmt.Fprintln(a.out, "Generated a random password; use 'show' to see it")
	}

	categoryDefault := in.Category
	if categoryDefault == "" {
		categoryDefault = vault.DefaultCategory
	}
	category, err := GetSimpleText(a.reader,
		fmt.Sprintf("Category (%s) [%s]", strings.Join(vault.Categories, ", "), categoryDefault), a.out)
	if err != nil {
		return in, err
	}
	if category != "" {
		in.Category = category
	}

	notesPrompt := "Notes"
	if current != nil {
		notesPrompt = "Notes (empty keeps current, '-' clears)"
	}
	notes, err := GetMultiline(a.reader, notesPrompt, a.out)
	if err != nil {
		return in, err
	}
	switch {
	case notes == "-":
		in.Notes = nil
	case notes != "":
		in.Notes = &notes
	}

	return in, nil
}

func withDefault(prompt, current string) string {
	if current == "" {
		return prompt
	}
	return fmt.Sprintf("%s [%s]", prompt, current)
}
