package emu

import "github.com/cbeck/dmge/internal/joypad"

// MsgKind enumerates the host → core control surface.
type MsgKind int

const (
	MsgTerminate MsgKind = iota
	MsgReset
	MsgDebug
	MsgShowVRAM
	MsgKeyDown
	MsgKeyUp
)

// ControlMsg is one host → core message. Button is meaningful for
// KeyDown/KeyUp, On for ShowVRAM.
type ControlMsg struct {
	Kind   MsgKind
	Button joypad.Button
	On     bool
}

func Terminate() ControlMsg              { return ControlMsg{Kind: MsgTerminate} }
func Reset() ControlMsg                  { return ControlMsg{Kind: MsgReset} }
func Debug() ControlMsg                  { return ControlMsg{Kind: MsgDebug} }
func ShowVRAM(on bool) ControlMsg        { return ControlMsg{Kind: MsgShowVRAM, On: on} }
func KeyDown(b joypad.Button) ControlMsg { return ControlMsg{Kind: MsgKeyDown, Button: b} }
func KeyUp(b joypad.Button) ControlMsg   { return ControlMsg{Kind: MsgKeyUp, Button: b} }
