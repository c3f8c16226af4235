package engine

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/babysh/babysh/pkg/interfaces"
	"github.com/babysh/babysh/pkg/logger"
	"github.com/babysh/babysh/pkg/mocks"
	"github.com/babysh/babysh/pkg/spawn"
	"github.com/babysh/babysh/pkg/types"
)

func testConfig() *types.ShellConfig {
	return &types.ShellConfig{
		Version:           "1.0",
		Prompt:            ": ",
		MaxBackgroundJobs: 100,
	}
}

func newTestShell(t *testing.T, spawner interfaces.Spawner) (*Shell, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	log := logger.CreateLoggerWithOutput("error", io.Discard)
	shell := New(testConfig(), log, interfaces.ShellDependencies{Spawner: spawner}, out)
	return shell, out
}

// waitForDrain polls until no background job remains running, so ReapOnce
// sees every recorded outcome in a single sweep.
func waitForDrain(t *testing.T, shell *Shell) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for shell.table.Running() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("background jobs did not finish in time")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestShell_NoOpLines(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	shell, out := newTestShell(t, spawner)

	shell.Eval("")
	shell.Eval("   ")
	shell.Eval("# this is a comment")
	shell.Eval("#ls -la")

	if n := len(spawner.Directives()); n != 0 {
		t.Errorf("no-op lines must not spawn, got %d spawns", n)
	}
	if out.Len() != 0 {
		t.Errorf("no-op lines must not print, got %q", out.String())
	}
}

func TestShell_ForegroundExitValue(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	spawner.Script("false", mocks.NewMockProcessHandle(101, types.Outcome{ExitCode: 1}))
	shell, out := newTestShell(t, spawner)

	shell.Eval("false")
	if out.Len() != 0 {
		t.Errorf("normal foreground exit must print nothing, got %q", out.String())
	}

	shell.Eval("status")
	if got := out.String(); got != "exit value 1\n" {
		t.Errorf("expected 'exit value 1', got %q", got)
	}
}

func TestShell_ForegroundSignalReported(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	spawner.Script("victim", mocks.NewMockProcessHandle(102, types.Outcome{Signal: 2}))
	shell, out := newTestShell(t, spawner)

	shell.Eval("victim")
	if got := out.String(); got != "terminated by signal 2\n" {
		t.Errorf("expected immediate signal report, got %q", got)
	}

	out.Reset()
	shell.Eval("status")
	if got := out.String(); got != "terminated by signal 2\n" {
		t.Errorf("status must repeat the signal report, got %q", got)
	}
}

func TestShell_StatusIsRepeatable(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	spawner.Script("job", mocks.NewMockProcessHandle(103, types.Outcome{ExitCode: 7}))
	shell, out := newTestShell(t, spawner)

	shell.Eval("job")
	shell.Eval("status")
	shell.Eval("status")

	want := "exit value 7\nexit value 7\n"
	if got := out.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestShell_BackgroundLaunchAndReap(t *testing.T) {
	h := mocks.NewBlockingProcessHandle(4242, types.Outcome{ExitCode: 0})
	spawner := mocks.NewMockSpawner()
	spawner.Script("sleeper", h)
	shell, out := newTestShell(t, spawner)

	shell.Eval("sleeper &")
	if got := out.String(); got != "background pid 4242\n" {
		t.Errorf("expected background start report, got %q", got)
	}
	directives := spawner.Directives()
	if len(directives) != 1 || !directives[0].Background {
		t.Fatal("expected one background directive")
	}

	out.Reset()
	shell.ReapOnce()
	if out.Len() != 0 {
		t.Errorf("running job must not be reported, got %q", out.String())
	}

	h.Release()
	waitForDrain(t, shell)

	shell.ReapOnce()
	if got := out.String(); got != "background pid 4242 is done: exit value 0\n" {
		t.Errorf("expected done report, got %q", got)
	}

	out.Reset()
	shell.ReapOnce()
	if out.Len() != 0 {
		t.Errorf("finished job must be reported exactly once, got %q", out.String())
	}
}

func TestShell_BackgroundSignalReport(t *testing.T) {
	h := mocks.NewBlockingProcessHandle(555, types.Outcome{Signal: 15})
	spawner := mocks.NewMockSpawner()
	spawner.Script("doomed", h)
	shell, out := newTestShell(t, spawner)

	shell.Eval("doomed &")
	h.Release()
	waitForDrain(t, shell)

	out.Reset()
	shell.ReapOnce()
	if got := out.String(); got != "background pid 555 is done: terminated by signal 15\n" {
		t.Errorf("expected signal done report, got %q", got)
	}
}

func TestShell_BackgroundDoesNotChangeStatus(t *testing.T) {
	h := mocks.NewBlockingProcessHandle(556, types.Outcome{ExitCode: 42})
	spawner := mocks.NewMockSpawner()
	spawner.Script("bg", h)
	shell, out := newTestShell(t, spawner)

	shell.Eval("bg &")
	h.Release()
	waitForDrain(t, shell)
	shell.ReapOnce()

	out.Reset()
	shell.Eval("status")
	if got := out.String(); got != "exit value 0\n" {
		t.Errorf("background exit must not affect status, got %q", got)
	}
}

func TestShell_TableFullRejectsBeforeSpawn(t *testing.T) {
	h := mocks.NewBlockingProcessHandle(1, types.Outcome{})
	spawner := mocks.NewMockSpawner()
	spawner.Script("job", h)
	out := &bytes.Buffer{}
	log := logger.CreateLoggerWithOutput("error", io.Discard)
	cfg := testConfig()
	cfg.MaxBackgroundJobs = 1
	shell := New(cfg, log, interfaces.ShellDependencies{Spawner: spawner}, out)
	defer h.Release()

	shell.Eval("job &")
	out.Reset()
	shell.Eval("job &")

	if got := out.String(); got != "too many background jobs\n" {
		t.Errorf("expected capacity error, got %q", got)
	}
	if n := len(spawner.Directives()); n != 1 {
		t.Errorf("full table must reject before spawn, got %d spawns", n)
	}

	out.Reset()
	shell.Eval("status")
	if got := out.String(); got != "exit value 1\n" {
		t.Errorf("capacity error must record failure, got %q", got)
	}
}

func TestShell_InvalidCommandReported(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	spawner.SetSpawnError(fmt.Errorf("exec: not found"))
	shell, out := newTestShell(t, spawner)

	shell.Eval("nosuchcmd")
	if got := out.String(); got != "nosuchcmd is not a valid command\n" {
		t.Errorf("expected invalid command report, got %q", got)
	}

	out.Reset()
	shell.Eval("status")
	if got := out.String(); got != "exit value 1\n" {
		t.Errorf("launch failure must record failure, got %q", got)
	}
}

func TestShell_OpenErrorReportedVerbatim(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	spawner.SetSpawnError(&spawn.OpenError{
		Path: "missing.txt",
		Kind: types.RedirectionInput,
		Err:  os.ErrNotExist,
	})
	shell, out := newTestShell(t, spawner)

	shell.Eval("cat < missing.txt")
	if got := out.String(); got != "cannot open missing.txt for input\n" {
		t.Errorf("expected open error report, got %q", got)
	}
}

func TestShell_WaitErrorRecordsFailure(t *testing.T) {
	h := mocks.NewMockProcessHandle(9, types.Outcome{})
	h.SetWaitError(fmt.Errorf("wait4: no child"))
	spawner := mocks.NewMockSpawner()
	spawner.Script("flaky", h)
	shell, out := newTestShell(t, spawner)

	shell.Eval("flaky")
	if !strings.Contains(out.String(), "wait failed") {
		t.Errorf("expected wait failure report, got %q", out.String())
	}

	out.Reset()
	shell.Eval("status")
	if got := out.String(); got != "exit value 1\n" {
		t.Errorf("wait failure must record failure, got %q", got)
	}
}

func TestShell_ExitKillsBackgroundJobs(t *testing.T) {
	h := mocks.NewBlockingProcessHandle(77, types.Outcome{})
	spawner := mocks.NewMockSpawner()
	spawner.Script("job", h)
	shell, _ := newTestShell(t, spawner)

	shell.Eval("job &")
	shell.Eval("exit")

	if !shell.Exited() {
		t.Error("exit builtin must end the loop")
	}
	if !h.Killed() {
		t.Error("exit must kill running background jobs")
	}
}

func TestShell_CdBuiltin(t *testing.T) {
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(origDir)

	shell, out := newTestShell(t, mocks.NewMockSpawner())

	target := t.TempDir()
	shell.Eval("cd " + target)
	if out.Len() != 0 {
		t.Errorf("successful cd must print nothing, got %q", out.String())
	}
	got, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if resolved, _ := filepath.EvalSymlinks(target); got != target && got != resolved {
		t.Errorf("expected cwd %q, got %q", target, got)
	}

	shell.Eval("cd /definitely/not/a/dir")
	if got := out.String(); got != "cd: /definitely/not/a/dir: No such file or directory\n" {
		t.Errorf("expected cd error report, got %q", got)
	}

	out.Reset()
	shell.Eval("status")
	if got := out.String(); got != "exit value 1\n" {
		t.Errorf("failed cd must record failure, got %q", got)
	}
}

func TestShell_CdNoArgGoesHome(t *testing.T) {
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(origDir)

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory in this environment")
	}

	shell, out := newTestShell(t, mocks.NewMockSpawner())

	shell.Eval("cd")
	if out.Len() != 0 {
		t.Errorf("cd with no argument must print nothing, got %q", out.String())
	}
	got, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if resolved, _ := filepath.EvalSymlinks(home); got != home && got != resolved {
		t.Errorf("expected cwd %q, got %q", home, got)
	}
}

func TestShell_NotifierCalledWhenEnabled(t *testing.T) {
	h := mocks.NewBlockingProcessHandle(88, types.Outcome{ExitCode: 0})
	spawner := mocks.NewMockSpawner()
	spawner.Script("job", h)
	notifier := mocks.NewMockNotifier()

	out := &bytes.Buffer{}
	log := logger.CreateLoggerWithOutput("error", io.Discard)
	enabled := true
	cfg := testConfig()
	cfg.Notifications = &types.NotificationsConfig{Enabled: &enabled}
	shell := New(cfg, log, interfaces.ShellDependencies{Spawner: spawner, Notifier: notifier}, out)

	shell.Eval("job &")
	h.Release()
	waitForDrain(t, shell)
	shell.ReapOnce()

	if got := notifier.Notified(); len(got) != 1 || got[0] != 88 {
		t.Errorf("expected one notification for pid 88, got %v", got)
	}
}

func TestShell_ApplyConfigAdoptedAtPromptCycle(t *testing.T) {
	shell, _ := newTestShell(t, mocks.NewMockSpawner())

	next := testConfig()
	next.Prompt = "$ "
	shell.ApplyConfig(next)

	// The staged config is invisible until the next prompt cycle.
	if shell.cfg.Prompt != ": " {
		t.Errorf("staged config must not apply immediately, got %q", shell.cfg.Prompt)
	}

	shell.ReapOnce()
	if shell.cfg.Prompt != "$ " {
		t.Errorf("expected reloaded prompt after prompt cycle, got %q", shell.cfg.Prompt)
	}
}

func TestShell_ApplyConfigConcurrentWithPromptCycles(t *testing.T) {
	// ApplyConfig is called from the reload watcher's goroutine while the
	// control thread cycles; the race detector must stay quiet.
	h := mocks.NewBlockingProcessHandle(31, types.Outcome{ExitCode: 0})
	spawner := mocks.NewMockSpawner()
	spawner.Script("job", h)
	shell, _ := newTestShell(t, spawner)

	shell.Eval("job &")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			next := testConfig()
			next.Prompt = fmt.Sprintf("%d> ", i)
			shell.ApplyConfig(next)
		}
	}()

	for i := 0; i < 100; i++ {
		shell.ReapOnce()
		shell.Eval("status")
	}
	<-done

	h.Release()
	waitForDrain(t, shell)
	shell.ReapOnce()

	if shell.cfg.Prompt != "99> " {
		t.Errorf("expected the last staged prompt, got %q", shell.cfg.Prompt)
	}
}

func TestShell_MarkerOnlyLineIsNonFatal(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	shell, out := newTestShell(t, spawner)

	// Nothing but the background marker: no program to run. The shell
	// reports it and keeps going; it must never panic the control thread.
	shell.Eval("&")
	shell.Eval("& &")

	if !strings.Contains(out.String(), "missing command") {
		t.Errorf("expected missing command report, got %q", out.String())
	}
	if n := len(spawner.Directives()); n != 0 {
		t.Errorf("marker-only lines must not spawn, got %d spawns", n)
	}

	out.Reset()
	shell.Eval("status")
	if got := out.String(); got != "exit value 1\n" {
		t.Errorf("marker-only line must record failure, got %q", got)
	}
}

func TestShell_MissingRedirectTarget(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	shell, out := newTestShell(t, spawner)

	shell.Eval("wc <")
	if !strings.Contains(out.String(), "missing redirection target") {
		t.Errorf("expected parse error report, got %q", out.String())
	}
	if n := len(spawner.Directives()); n != 0 {
		t.Error("parse failure must not spawn")
	}
}
