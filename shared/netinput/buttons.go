// Package netinput holds the committed per-tick input shared by client and
// server, including the button bitmask and its edge helpers.
package netinput

// Button is a bit position in Buttons.
type Button uint8

const (
	ButtonJump Button = iota
	ButtonGrapple
	ButtonGlide
	ButtonBreak
	ButtonLaser
)

// Buttons is a bitmask of held buttons.
type Buttons uint32

func (b Buttons) IsSet(button Button) bool {
	return b&(1<<button) != 0
}

func (b *Buttons) Set(button Button, held bool) {
	if held {
		*b |= 1 << button
	} else {
		*b &^= 1 << button
	}
}

// Merge ORs samples together so a press between ticks is kept.
func (b Buttons) Merge(other Buttons) Buttons {
	return b | other
}

// Pressed returns the buttons held now but not in prev.
func (b Buttons) Pressed(prev Buttons) Buttons {
	return b &^ prev
}

// Released returns the buttons held in prev but not now.
func (b Buttons) Released(prev Buttons) Buttons {
	return prev &^ b
}

// WasPressed reports a released to pressed transition of button since prev.
func (b Buttons) WasPressed(prev Buttons, button Button) bool {
	return b.Pressed(prev).IsSet(button)
}

// WasReleased reports a pressed to released transition of button since prev.
func (b Buttons) WasReleased(prev Buttons, button Button) bool {
	return b.Released(prev).IsSet(button)
}
