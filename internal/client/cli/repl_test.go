package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	unlocked bool

	calls []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeExec) isUnlocked() bool { return f.unlocked }
func (f *fakeExec) Status(ctx context.Context) error { return f.record("status") }
func (f *fakeExec) Login(ctx context.Context) error { return f.record("login") }
func (f *fakeExec) Setup(ctx context.Context) error { return f.record("setup") }
func (f *fakeExec) Add(ctx context.Context) error { return f.record("add") }
func (f *fakeExec) Backup(ctx context.Context) error { return f.record("backup") }
func (f *fakeExec) Show(ctx context.Context, id string) error { return f.record("show:" + id) }
func (f *fakeExec) Edit(ctx context.Context, id string) error { return f.record("edit:" + id) }
func (f *fakeExec) Delete(ctx context.Context, id string) error { return f.record("delete:" + id) }
func (f *fakeExec) List(ctx context.Context, category string) error {
	return f.record("list:" + category)
}
func (f *fakeExec) Unlock(ctx context.Context) error {
	f.unlocked = true
	return f.record("unlock")
}
func (f *fakeExec) Lock(ctx context.Context) error {
	f.unlocked = false
	return f.record("lock")
}

func runScript(exec *fakeExec, lines ...string) string {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, func() string { return "(s)" }, r, &out)
	return out.String()
}

func TestRunREPL_Dispatch(t *testing.T) {
	exec := &fakeExec{}
	out := runScript(exec,
		"help",
		"status",
		"unlock",
		"help",
		"add",
		"list",
		"l work",
		"show abc",
		"edit abc extra",
		"rm abc",
		"backup",
		"",
		"lock",
		"login",
		"setup",
		"frobnicate",
		"exit",
		"add",
	)

	assert.Equal(t, []string{
		"status", "unlock", "add", "list:", "list:work", "show:abc", "edit:abc",
		"delete:abc", "backup", "lock", "login", "setup",
	}, exec.calls)
	assert.Contains(t, out, helpLocked)
	assert.Contains(t, out, helpUnlocked)
	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Contains(t, out, "Bye!")
	assert.Contains(t, out, "passvault (s)> ")
}

func TestRunREPL_EOFEndsLoop(t *testing.T) {
	exec := &fakeExec{}
	out := runScript(exec, "status")

	assert.Equal(t, []string{"status"}, exec.calls)
	assert.NotContains(t, out, "Bye!")
}

func TestRunREPL_CancelledContext(t *testing.T) {
	exec := &fakeExec{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("status\n")), &out)
	assert.Empty(t, exec.calls)
}
