package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/rahulm/quizforge/internal/screen"
)

type fakeScreen struct {
	name     string
	initRuns int
	lastMsg  tea.Msg
}

func (f *fakeScreen) Init() tea.Cmd {
	f.initRuns++
	return nil
}

func (f *fakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	f.lastMsg = msg
	return f, nil
}

func (f *fakeScreen) View(int, int) string { return f.name }
func (f *fakeScreen) Title() string        { return f.name }

func TestInitialScreenNotInited(t *testing.T) {
	home := &fakeScreen{name: "home"}
	r := New(home)

	if home.initRuns != 0 {
		t.Errorf("initial screen Init ran %d times, want 0 (the program calls it)", home.initRuns)
	}
	if r.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", r.Depth())
	}
	if r.Active() != home {
		t.Errorf("Active() = %v, want the initial screen", r.Active())
	}
}

func TestPushAndPop(t *testing.T) {
	home := &fakeScreen{name: "home"}
	banks := &fakeScreen{name: "banks"}
	r := New(home)

	r.Push(banks)
	if banks.initRuns != 1 {
		t.Errorf("pushed screen Init ran %d times, want 1", banks.initRuns)
	}
	if got := r.Active().Title(); got != "banks" {
		t.Errorf("Active().Title() = %q, want %q", got, "banks")
	}

	r.Pop()
	if r.Depth() != 1 {
		t.Errorf("Depth() after pop = %d, want 1", r.Depth())
	}
	if got := r.Active().Title(); got != "home" {
		t.Errorf("Active().Title() = %q, want %q", got, "home")
	}
}

func TestPopKeepsBottomScreen(t *testing.T) {
	r := New(&fakeScreen{name: "home"})

	r.Pop()
	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1 (pop never empties the stack)", r.Depth())
	}
}

func TestReplaceSwapsWithoutGrowing(t *testing.T) {
	home := &fakeScreen{name: "home"}
	quiz := &fakeScreen{name: "quiz"}
	summary := &fakeScreen{name: "summary"}
	r := New(home)
	r.Push(quiz)

	r.Replace(summary)

	if r.Depth() != 2 {
		t.Errorf("Depth() after replace = %d, want 2", r.Depth())
	}
	if got := r.Active().Title(); got != "summary" {
		t.Errorf("Active().Title() = %q, want %q", got, "summary")
	}
	if summary.initRuns != 1 {
		t.Errorf("replacement Init ran %d times, want 1", summary.initRuns)
	}

	// Popping the summary must land back on home, not on the quiz.
	r.Pop()
	if got := r.Active().Title(); got != "home" {
		t.Errorf("Active().Title() after pop = %q, want %q", got, "home")
	}
}

func TestUpdateNavigationMsgs(t *testing.T) {
	home := &fakeScreen{name: "home"}
	r := New(home)

	banks := &fakeScreen{name: "banks"}
	r.Update(PushScreenMsg{Screen: banks})
	if got := r.Active().Title(); got != "banks" {
		t.Errorf("Active().Title() after PushScreenMsg = %q, want %q", got, "banks")
	}

	summary := &fakeScreen{name: "summary"}
	r.Update(ReplaceScreenMsg{Screen: summary})
	if got := r.Active().Title(); got != "summary" {
		t.Errorf("Active().Title() after ReplaceScreenMsg = %q, want %q", got, "summary")
	}

	r.Update(PopScreenMsg{})
	if got := r.Active().Title(); got != "home" {
		t.Errorf("Active().Title() after PopScreenMsg = %q, want %q", got, "home")
	}
}

func TestUpdateForwardsToActiveOnly(t *testing.T) {
	home := &fakeScreen{name: "home"}
	banks := &fakeScreen{name: "banks"}
	r := New(home)
	r.Push(banks)

	type pingMsg struct{}
	r.Update(pingMsg{})

	if _, ok := banks.lastMsg.(pingMsg); !ok {
		t.Errorf("active screen got %T, want pingMsg", banks.lastMsg)
	}
	if home.lastMsg != nil {
		t.Errorf("covered screen got %T, want nothing", home.lastMsg)
	}
}
