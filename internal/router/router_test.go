package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/screen"
)

type fakeScreen struct {
	name    string
	inited  int
	updates int
}

func (f *fakeScreen) Init() tea.Cmd { f.inited++; return nil }
func (f *fakeScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) {
	f.updates++
	return f, nil
}
func (f *fakeScreen) View(int, int) string { return f.name }
func (f *fakeScreen) Title() string        { return f.name }

func TestNavigation(t *testing.T) {
	home := &fakeScreen{name: "home"}
	form := &fakeScreen{name: "form"}
	result := &fakeScreen{name: "result"}

	tests := []struct {
		name       string
		msg        tea.Msg
		wantActive string
		wantHome   bool
	}{
		{"pop at home is a no-op", PopScreenMsg{}, "home", true},
		{"push form", PushScreenMsg{Screen: form}, "form", false},
		{"replace form with result", ReplaceScreenMsg{Screen: result}, "result", false},
		{"pop back home", PopScreenMsg{}, "home", true},
	}

	r := New(home)
	for _, tt := range tests {
		r.Update(tt.msg)
		if got := r.View(80, 24); got != tt.wantActive {
			t.Errorf("%s: active = %q, want %q", tt.name, got, tt.wantActive)
		}
		if r.AtHome() != tt.wantHome {
			t.Errorf("%s: AtHome = %v, want %v", tt.name, r.AtHome(), tt.wantHome)
		}
	}

	if form.inited != 1 || result.inited != 1 {
		t.Errorf("Init calls: form %d, result %d", form.inited, result.inited)
	}
	if home.inited != 0 {
		t.Error("root screen is initialised by the app, not the router")
	}
}

func TestUpdateReachesActiveScreenOnly(t *testing.T) {
	home := &fakeScreen{name: "home"}
	form := &fakeScreen{name: "form"}
	r := New(home)
	r.Push(form)

	r.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})

	if form.updates != 1 || home.updates != 0 {
		t.Errorf("updates: form %d, home %d", form.updates, home.updates)
	}
}
