// Package platform describes the Mini App chrome (back button, main button, closing the app)
// as a capability handed to the code that needs it.
package platform

import "sync"

type Chrome interface {
	Expand()
	ShowBack()
	HideBack()
	SetMainButtonLabel(label string)
	Close()
}

const (
	ActionExpand          = "expand"
	ActionShowBack        = "show_back"
	ActionHideBack        = "hide_back"
	ActionMainButtonLabel = "set_main_button_label"
	ActionClose           = "close"
)

// Command is one chrome instruction for the web client to execute.
type Command struct {
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`
}

// Directives records chrome calls made while serving one request so they can be returned to the
// web client alongside the response.
type Directives struct {
	mu       sync.Mutex
	commands []Command
}

func NewDirectives() *Directives {
	return &Directives{commands: []Command{}}
}

func (d *Directives) Expand()   { d.record(Command{Action: ActionExpand}) }
func (d *Directives) ShowBack() { d.record(Command{Action: ActionShowBack}) }
func (d *Directives) HideBack() { d.record(Command{Action: ActionHideBack}) }
func (d *Directives) Close()    { d.record(Command{Action: ActionClose}) }

func (d *Directives) SetMainButtonLabel(label string) {
	d.record(Command{Action: ActionMainButtonLabel, Label: label})
}

func (d *Directives) Commands() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Command, len(d.commands))
	copy(out, d.commands)
	return out
}

func (d *Directives) record(c Command) {
	d.mu.Lock()
	d.commands = append(d.commands, c)
	d.mu.Unlock()
}

// Nop ignores every call.
type Nop struct{}

func (Nop) Expand()                   {}
func (Nop) ShowBack()                 {}
func (Nop) HideBack()                 {}
func (Nop) SetMainButtonLabel(string) {}
func (Nop) Close()                    {}
