package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/menuboard/internal/display"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgFrame MsgKind = iota
	MsgDayCheck
)

// frameMsg is the constructor for [MsgFrame]
func frameMsg(f display.Frame) Msg {
	return Msg{kind: MsgFrame, data: f}
}

// dayCheckMsg is the constructor for [MsgDayCheck]
func dayCheckMsg(t time.Time) Msg {
	return Msg{kind: MsgDayCheck, data: t}
}
