package home

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/router"
)

func TestHomeWithoutModel(t *testing.T) {
	h := New(nil, nil)
	if h.Title() != "Home" {
		t.Errorf("Title = %q", h.Title())
	}
	if !strings.Contains(h.View(100, 30), "Model not loaded") {
		t.Error("expected model-not-loaded status")
	}
	if !h.menu.Items[1].Disabled {
		t.Error("history should be disabled without a store")
	}
}

func TestHomeOpensPredictForm(t *testing.T) {
	h := New(nil, nil)
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if push.Screen.Title() != "Delay Prediction" {
		t.Errorf("pushed %q", push.Screen.Title())
	}
}

func TestHomeSkipsDisabledHistory(t *testing.T) {
	h := New(nil, nil)
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if h.menu.Selected != 2 {
		t.Errorf("selected = %d, want 2 (EXIT)", h.menu.Selected)
	}
}
