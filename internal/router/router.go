// Package router is the TUI's screen stack. The home screen is the root
// and cannot be popped.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/lalo8115/proyecto-vuelos/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg goes back one screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the top screen, e.g. a result for its form.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

type Router struct {
	stack []screen.Screen
}

func New(home screen.Screen) *Router {
	return &Router{stack: []screen.Screen{home}}
}

func (r *Router) top() int { return len(r.stack) - 1 }

// Push opens s and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop drops the top screen unless it is home.
func (r *Router) Pop() {
	if r.AtHome() {
		return
	}
	r.stack[r.top()] = nil
	r.stack = r.stack[:r.top()]
}

// Replace swaps the top screen and returns the new screen's Init command.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.stack[r.top()] = s
	return s.Init()
}

func (r *Router) Active() screen.Screen { return r.stack[r.top()] }

// AtHome reports whether only the home screen is open.
func (r *Router) AtHome() bool { return len(r.stack) == 1 }

// Update applies navigation messages and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		r.Pop()
		return nil
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}

	next, cmd := r.Active().Update(msg)
	r.stack[r.top()] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
