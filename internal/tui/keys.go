package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"studyroom/internal/i18n"
)

// KeyMap 定义全局快捷键绑定
// KeyMap defines the study room keybindings
type KeyMap struct {
	Toggle     key.Binding
	End        key.Binding
	Focus      key.Binding
	Visual     key.Binding
	Logout     key.Binding
	Quit       key.Binding
	Submit     key.Binding
	TodoDone   key.Binding
	TodoRemove key.Binding
	ItemUp     key.Binding
	ItemDown   key.Binding
	Tips       key.Binding
}

// DefaultKeyMap 默认快捷键，帮助文字来自 tr
// DefaultKeyMap returns the default bindings with help text from tr.
func DefaultKeyMap(tr *i18n.I18n) KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", tr.T("keys.toggle")),
		),
		End: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", tr.T("keys.end")),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", tr.T("keys.focus")),
		),
		Visual: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", tr.T("keys.visual")),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", tr.T("keys.logout")),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", tr.T("keys.quit")),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
		),
		TodoDone: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", tr.T("keys.toggle_todo")),
		),
		TodoRemove: key.NewBinding(
			key.WithKeys("delete", "backspace"),
			key.WithHelp("del", tr.T("keys.delete_todo")),
		),
		ItemUp: key.NewBinding(
			key.WithKeys("up", "k"),
		),
		ItemDown: key.NewBinding(
			key.WithKeys("down", "j"),
		),
		Tips: key.NewBinding(
			key.WithKeys("f1", "f2", "f3"),
			key.WithHelp("f1-f3", tr.T("keys.tips")),
		),
	}
}

// HelpLine renders the bindings shown in the status bar.
func (k KeyMap) HelpLine() []key.Binding {
	return []key.Binding{k.Toggle, k.End, k.Focus, k.Visual, k.Tips, k.Logout, k.Quit}
}
