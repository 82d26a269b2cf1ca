package dialog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"nudge/internal/tasks"
)

type fakePresenter struct {
	raw string
	err error
	req Request
}

func (f *fakePresenter) Present(_ context.Context, req Request) (string, error) {
	f.req = req
	return f.raw, f.err
}

func TestReminderButtonsAndDefault(t *testing.T) {
	labels, def := buttons(KindReminder)
	if len(labels) != 3 || def != "Later" {
		t.Fatalf("unexpected reminder buttons %v default %q", labels, def)
	}
	if labels[len(labels)-1] != "Complete" {
		t.Fatalf("expected Complete as the rightmost button, got %v", labels)
	}
}

func TestConfirmButtonsAndDefault(t *testing.T) {
	labels, def := buttons(KindCompletionConfirm)
	if len(labels) != 2 || def != "Confirm" {
		t.Fatalf("unexpected confirm buttons %v default %q", labels, def)
	}
}

func TestProtocolMapsButtons(t *testing.T) {
	task := &tasks.Task{ID: 1, Content: "file taxes"}
	cases := []struct {
		kind Kind
		raw  string
		want Outcome
	}{
		{KindReminder, "Complete", OutcomeComplete},
		{KindReminder, "Postpone", OutcomePostpone},
		{KindReminder, "Later", OutcomeLater},
		{KindCompletionConfirm, "Confirm", OutcomeConfirm},
		{KindCompletionConfirm, "Cancel", OutcomeCancel},
	}
	for _, tc := range cases {
		p := NewProtocol(&fakePresenter{raw: tc.raw}, time.Second, nil)
		if got := p.Present(context.Background(), tc.kind, task); got != tc.want {
			t.Fatalf("%s/%s: got %s want %s", tc.kind, tc.raw, got, tc.want)
		}
	}
}

func TestProtocolTimeoutEqualsDefault(t *testing.T) {
	task := &tasks.Task{ID: 1, Content: "file taxes"}

	// Presenter reporting a give-up returns an empty label.
	p := NewProtocol(&fakePresenter{raw: ""}, time.Second, nil)
	if got := p.Present(context.Background(), KindReminder, task); got != OutcomeLater {
		t.Fatalf("reminder timeout should default to later, got %s", got)
	}
	if got := p.Present(context.Background(), KindCompletionConfirm, task); got != OutcomeConfirm {
		t.Fatalf("confirm timeout should default to confirm, got %s", got)
	}
}

func TestProtocolErrorAndUnknownButtonUseDefault(t *testing.T) {
	task := &tasks.Task{ID: 1, Content: "file taxes"}

	p := NewProtocol(&fakePresenter{err: errors.New("osascript exploded")}, time.Second, nil)
	if got := p.Present(context.Background(), KindReminder, task); got != OutcomeLater {
		t.Fatalf("presenter error should default to later, got %s", got)
	}

	p = NewProtocol(&fakePresenter{raw: "Snooze Forever"}, time.Second, nil)
	if got := p.Present(context.Background(), KindReminder, task); got != OutcomeLater {
		t.Fatalf("unknown button should default to later, got %s", got)
	}
}

func TestBuildScriptEscapesContent(t *testing.T) {
	req := Request{
		Title:         "Task Reminder",
		Message:       `say "hi"` + "\nsecond line",
		Buttons:       []string{"Later", "Complete"},
		DefaultButton: "Later",
	}
	script := buildScript(req, 30*time.Second)
	if !strings.Contains(script, `say \"hi\"\nsecond line`) {
		t.Fatalf("expected escaped message in script, got %q", script)
	}
	if !strings.Contains(script, "giving up after 30") {
		t.Fatalf("expected give-up clause, got %q", script)
	}
	if !strings.Contains(script, `buttons {"Later", "Complete"}`) {
		t.Fatalf("expected button list, got %q", script)
	}
}

func TestParseButtonReturned(t *testing.T) {
	cases := []struct {
		output string
		want   string
	}{
		{"button returned:Complete\n", "Complete"},
		{"button returned:, gave up:true\n", ""},
		{"button returned:Postpone, gave up:false\n", "Postpone"},
		{"no dialog output", ""},
	}
	for _, tc := range cases {
		if got := parseButtonReturned(tc.output); got != tc.want {
			t.Fatalf("parseButtonReturned(%q) = %q, want %q", tc.output, got, tc.want)
		}
	}
}

func TestOSAScriptPresentParsesChoice(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string{name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "DIALOG_HELPER_OUTPUT=button returned:Complete")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	presenter := NewOSAScript("osascript")
	raw, err := presenter.Present(context.Background(), Request{
		Title:         "Task Reminder",
		Message:       "file taxes",
		Buttons:       []string{"Later", "Postpone", "Complete"},
		DefaultButton: "Later",
		Timeout:       5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Present returned error: %v", err)
	}
	if raw != "Complete" {
		t.Fatalf("expected Complete, got %q", raw)
	}
	if len(capturedArgs) != 3 || capturedArgs[0] != "osascript" || capturedArgs[1] != "-e" {
		t.Fatalf("unexpected command invocation %v", capturedArgs)
	}
	if !strings.Contains(capturedArgs[2], "display dialog") {
		t.Fatalf("expected display dialog script, got %q", capturedArgs[2])
	}
}

func TestOSAScriptPresentPropagatesFailure(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "DIALOG_HELPER_FAIL=1")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	presenter := NewOSAScript("")
	if _, err := presenter.Present(context.Background(), Request{
		Buttons:       []string{"Later"},
		DefaultButton: "Later",
	}); err == nil {
		t.Fatal("expected error from failing subprocess")
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	if os.Getenv("DIALOG_HELPER_FAIL") == "1" {
		fmt.Fprintln(os.Stderr, "execution error: simulated failure")
		os.Exit(1)
	}
	fmt.Fprintln(os.Stdout, os.Getenv("DIALOG_HELPER_OUTPUT"))
	os.Exit(0)
}
