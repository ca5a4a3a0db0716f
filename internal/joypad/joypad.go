// Package joypad implements the button matrix at 0xFF00.
package joypad

// Button identifies one of the eight inputs.
type Button int

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

func (b Button) String() string {
	switch b {
	case Right:
		return "Right"
	case Left:
		return "Left"
	case Up:
		return "Up"
	case Down:
		return "Down"
	case A:
		return "A"
	case B:
		return "B"
	case Select:
		return "Select"
	case Start:
		return "Start"
	}
	return "?"
}

// Joypad tracks the selected group and the active-low button nibbles.
// A falling edge on any selected line calls raise.
type Joypad struct {
	sel     byte // bits 5-4 as last written (active-low selects)
	buttons byte // low nibble, 0 = pressed: A, B, Select, Start
	dpad    byte // low nibble, 0 = pressed: Right, Left, Up, Down
	lower4  byte // last observed low nibble, for edge detection

	raise func()
}

func New(raise func()) *Joypad {
	j := &Joypad{raise: raise}
	j.Reset()
	return j
}

// Reset restores the post-boot state (reads 0xCF: both select lines low,
// nothing pressed).
func (j *Joypad) Reset() {
	j.sel = 0x00
	j.buttons = 0x0F
	j.dpad = 0x0F
	j.lower4 = 0x0F
}

// Read returns the full 0xFF00 byte. Bits 7-6 read as 1; the low nibble is
// the AND of all selected groups (0x0F when neither is selected).
func (j *Joypad) Read() byte {
	return 0xC0 | (j.sel & 0x30) | j.observed()
}

// Write latches the group-select bits; the low nibble is read-only.
func (j *Joypad) Write(value byte) {
	j.sel = value & 0x30
	j.update()
}

func (j *Joypad) observed() byte {
	out := byte(0x0F)
	if j.sel&0x10 == 0 {
		out &= j.dpad
	}
	if j.sel&0x20 == 0 {
		out &= j.buttons
	}
	return out
}

func (j *Joypad) KeyDown(b Button) {
	switch b {
	case Right:
		j.dpad &^= 1 << 0
	case Left:
		j.dpad &^= 1 << 1
	case Up:
		j.dpad &^= 1 << 2
	case Down:
		j.dpad &^= 1 << 3
	case A:
		j.buttons &^= 1 << 0
	case B:
		j.buttons &^= 1 << 1
	case Select:
		j.buttons &^= 1 << 2
	case Start:
		j.buttons &^= 1 << 3
	}
	j.update()
}

func (j *Joypad) KeyUp(b Button) {
	switch b {
	case Right:
		j.dpad |= 1 << 0
	case Left:
		j.dpad |= 1 << 1
	case Up:
		j.dpad |= 1 << 2
	case Down:
		j.dpad |= 1 << 3
	case A:
		j.buttons |= 1 << 0
	case B:
		j.buttons |= 1 << 1
	case Select:
		j.buttons |= 1 << 2
	case Start:
		j.buttons |= 1 << 3
	}
	j.update()
}

// update recomputes the observed nibble and raises the Joypad interrupt on
// any 1->0 transition of a selected line.
func (j *Joypad) update() {
	next := j.observed()
	if falling := j.lower4 &^ next; falling != 0 && j.raise != nil {
		j.raise()
	}
	j.lower4 = next
}
