// Package ui implements the terminal menu display using bubbletea's Elm architecture.
//
// The (view) [Model] wraps a [display.Renderer]. Frames produced by the renderer flow
// through a one slot channel into the bubbletea loop, so a burst of edits collapses
// into the newest frame instead of queueing. A periodic day check message lets the
// renderer roll over to the next date at midnight.
//
// The board is drawn as a lipgloss panel whose colors follow the theme and opacity
// level of the settings, with dish text emphasis following the size class.
//
// Keyboard bindings (q to quit, ? for help) are displayed via charmbracelet/bubbles/help.
package ui
