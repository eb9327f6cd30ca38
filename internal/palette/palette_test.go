package palette

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/ipc"
	"github.com/wingman-panel/wingman/internal/procexec"
)

type fakeRunner struct {
	out  string
	err  error
	last procexec.Command
}

func (r *fakeRunner) Run(_ context.Context, c procexec.Command) ([]byte, error) {
	r.last = c
	return []byte(r.out), r.err
}

type exitError int

func (e exitError) Error() string { return "exit status" }
func (e exitError) ExitCode() int { return int(e) }

func only(names ...string) func(string) bool {
	return func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
}

func mustBackend(t *testing.T, name string, r *fakeRunner) *launcher {
	t.Helper()
	b, err := NewBackend(name, r, only(name))
	if err != nil {
		t.Fatalf("NewBackend(%q): %v", name, err)
	}
	return b.(*launcher)
}

func TestDetectOrder(t *testing.T) {
	name, err := Detect(only("dmenu", "fuzzel"))
	if err != nil || name != "fuzzel" {
		t.Fatalf("Detect = %q, %v; want fuzzel", name, err)
	}
	if _, err := Detect(only()); !errors.Is(err, ErrNoLauncher) {
		t.Fatalf("Detect with nothing installed: %v", err)
	}
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend("auto", &fakeRunner{}, only("wofi"))
	if err != nil || b.Name() != "wofi" {
		t.Fatalf("auto backend = %v, %v; want wofi", b, err)
	}
	if _, err := NewBackend("rofi", &fakeRunner{}, only("dmenu")); err == nil {
		t.Fatal("expected error for missing launcher")
	}
	if _, err := NewBackend("tofi", &fakeRunner{}, only("tofi")); err == nil {
		t.Fatal("expected error for unknown launcher")
	}
}

func TestRofiFormatItem_UsesSingleNullSeparator(t *testing.T) {
	b := mustBackend(t, "rofi", &fakeRunner{})

	out := b.formatItem(Item{Label: "<Header>", IsHeader: true, Icon: "fo\x1fo"})
	if got := strings.Count(out, "\x00"); got != 1 {
		t.Fatalf("expected exactly 1 NUL separator, got %d (%q)", got, out)
	}
	if !strings.HasPrefix(out, "<b>&lt;Header&gt;</b>\x00") {
		t.Fatalf("expected escaped bold header, got %q", out)
	}
	if !strings.Contains(out, "nonselectable\x1ftrue\x1ficon\x1ffo o") {
		t.Fatalf("expected nonselectable and sanitized icon, got %q", out)
	}

	if out := b.formatItem(Item{Label: "plain"}); out != "plain" {
		t.Fatalf("plain item = %q", out)
	}
}

func TestRofiShowSelectsByIndex(t *testing.T) {
	r := &fakeRunner{out: "2\n"}
	b := mustBackend(t, "rofi", r)
	items := []Item{
		{Label: "head", IsHeader: true},
		{Label: "Dock top", Action: "side:top", IsActive: true},
		{Label: "Dock bottom", Action: "side:bottom"},
	}

	got, err := b.Show(context.Background(), "wingman", items, "side: top")
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if got.Action != "side:bottom" {
		t.Fatalf("selected %q, want side:bottom", got.Action)
	}

	args := strings.Join(r.last.Args, " ")
	for _, want := range []string{"-dmenu", "-format i", "-p wingman", "-a 1", "-selected-row 1", "-mesg side: top"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
	if lines := strings.Split(r.last.Stdin, "\n"); len(lines) != 3 {
		t.Fatalf("stdin has %d rows, want 3", len(lines))
	}
}

func TestDmenuShowSelectsByLabel(t *testing.T) {
	r := &fakeRunner{out: "Hide panel\n"}
	b := mustBackend(t, "dmenu", r)

	got, err := b.Show(context.Background(), "wingman", []Item{
		{Label: "Reload config", Action: ActionReload},
		{Label: "Hide panel", Action: ActionVisible},
	}, "")
	if err != nil || got.Action != ActionVisible {
		t.Fatalf("Show = %+v, %v", got, err)
	}
	if strings.Contains(r.last.Stdin, "\x00") {
		t.Fatalf("dmenu input must not carry rofi properties: %q", r.last.Stdin)
	}
}

func TestShowCancelAndErrors(t *testing.T) {
	items := []Item{{Label: "head", IsHeader: true}, {Label: "a", Action: "a"}}

	b := mustBackend(t, "fuzzel", &fakeRunner{err: exitError(1)})
	if _, err := b.Show(context.Background(), "", items, ""); !errors.Is(err, ErrCancelled) {
		t.Fatalf("escape: %v, want ErrCancelled", err)
	}

	b = mustBackend(t, "fuzzel", &fakeRunner{out: "0"})
	if _, err := b.Show(context.Background(), "", items, ""); !errors.Is(err, ErrCancelled) {
		t.Fatalf("header selection: %v, want ErrCancelled", err)
	}

	b = mustBackend(t, "fuzzel", &fakeRunner{out: "9"})
	if _, err := b.Show(context.Background(), "", items, ""); err == nil {
		t.Fatal("expected out-of-range error")
	}

	b = mustBackend(t, "fuzzel", &fakeRunner{err: exitError(2)})
	if _, err := b.Show(context.Background(), "", items, ""); err == nil || errors.Is(err, ErrCancelled) {
		t.Fatalf("crash: %v, want a failure", err)
	}

	if _, err := b.Show(context.Background(), "", nil, ""); err == nil {
		t.Fatal("expected error for empty menu")
	}
}

type fakeController struct {
	status  ipc.StatusData
	calls   []string
	failAll error
}

func (c *fakeController) GetStatus() (*ipc.StatusData, error) {
	s := c.status
	return &s, c.failAll
}

func (c *fakeController) SetSide(side dock.Side) (*ipc.PreferenceData, error) {
	c.calls = append(c.calls, "side:"+string(side))
	return &ipc.PreferenceData{Side: side, AutoPosition: true}, c.failAll
}

func (c *fakeController) ToggleAuto() (*ipc.PreferenceData, error) {
	c.calls = append(c.calls, "auto")
	return &ipc.PreferenceData{Side: c.status.Side, AutoPosition: !c.status.AutoPosition}, c.failAll
}

func (c *fakeController) ToggleVisible() (*ipc.VisibleData, error) {
	c.calls = append(c.calls, "visible")
	return &ipc.VisibleData{Visible: !c.status.Visible}, c.failAll
}

func (c *fakeController) Lookup(name string, online bool) (*ipc.LookupData, error) {
	if online {
		c.calls = append(c.calls, "online:"+name)
	}
	return &ipc.LookupData{App: name}, c.failAll
}

func (c *fakeController) Reload() error {
	c.calls = append(c.calls, "reload")
	return c.failAll
}

func (c *fakeController) Quit() error {
	c.calls = append(c.calls, "quit")
	return c.failAll
}

func TestItems(t *testing.T) {
	items := Items(&ipc.StatusData{Side: dock.Left, AutoPosition: true, Visible: true, DocApp: "curl"})

	if !items[0].IsHeader || items[0].Label != "wingman: curl" {
		t.Fatalf("header = %+v", items[0])
	}
	var active []string
	var actions []string
	for _, it := range items[1:] {
		actions = append(actions, it.Action)
		if it.IsActive {
			active = append(active, it.Action)
		}
	}
	if len(active) != 1 || active[0] != "side:left" {
		t.Fatalf("active rows = %v, want [side:left]", active)
	}
	want := "side:top side:bottom side:left side:right auto visible online reload quit"
	if got := strings.Join(actions, " "); got != want {
		t.Fatalf("actions = %q, want %q", got, want)
	}

	items = Items(&ipc.StatusData{Side: dock.Top})
	for _, it := range items {
		if it.Action == ActionOnline {
			t.Fatal("online entry offered without a documented app")
		}
		if it.Action == ActionVisible && it.Label != "Show panel" {
			t.Fatalf("hidden panel offers %q", it.Label)
		}
	}
}

func TestDispatch(t *testing.T) {
	c := &fakeController{status: ipc.StatusData{Side: dock.Top, AutoPosition: true, Visible: true, DocApp: "tar"}}

	tests := []struct {
		action string
		want   string
	}{
		{"side:right", "docked right"},
		{ActionAuto, "auto-position off"},
		{ActionVisible, "panel hidden"},
		{ActionOnline, "online lookup for tar"},
		{ActionReload, "config reloaded"},
		{ActionQuit, "daemon stopping"},
	}
	for _, tt := range tests {
		got, err := Dispatch(c, &c.status, tt.action)
		if err != nil || got != tt.want {
			t.Errorf("Dispatch(%q) = %q, %v; want %q", tt.action, got, err, tt.want)
		}
	}
	if got := strings.Join(c.calls, " "); got != "side:right auto visible online:tar reload quit" {
		t.Fatalf("calls = %q", got)
	}

	if _, err := Dispatch(c, &c.status, "side:middle"); err == nil {
		t.Fatal("expected invalid side error")
	}
	if _, err := Dispatch(c, &c.status, "dance"); err == nil {
		t.Fatal("expected unknown action error")
	}
}

func TestRun(t *testing.T) {
	c := &fakeController{status: ipc.StatusData{Side: dock.Top, Visible: true}}
	// Row 2 is "Dock bottom": the header is row 0.
	b := mustBackend(t, "rofi", &fakeRunner{out: "2"})

	got, err := Run(context.Background(), b, c)
	if err != nil || got != "docked bottom" {
		t.Fatalf("Run = %q, %v", got, err)
	}

	cancelled := mustBackend(t, "rofi", &fakeRunner{err: exitError(130)})
	got, err = Run(context.Background(), cancelled, c)
	if err != nil || got != "" {
		t.Fatalf("cancelled Run = %q, %v", got, err)
	}

	c.failAll = errors.New("failed to connect to daemon")
	if _, err := Run(context.Background(), b, c); err == nil {
		t.Fatal("expected daemon error")
	}
}
