package common

// Key is a virtual key code. Printable keys use their ASCII value (upper-case letters);
// non-printable keys use the GLFW key codes.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key int32

// Modifier is a bit set of held modifier keys, matching glfw.ModifierKey bits.
type Modifier uint32

const (
	ModShift   Modifier = 0x0001
	ModControl Modifier = 0x0002
	ModAlt     Modifier = 0x0004
	ModSuper   Modifier = 0x0008
)

// Has reports whether all bits of o are set in m.
func (m Modifier) Has(o Modifier) bool { return m&o == o }

const (
	KeyH     Key = 72 // H key (ASCII)
	KeyQ     Key = 81 // Q key (ASCII)
	KeyX     Key = 88 // X key (ASCII)
	KeySpace Key = 32 // Spacebar (ASCII)

	Key0 Key = 48 // 0 key (ASCII)
	Key1 Key = 49 // 1 key (ASCII)
	Key9 Key = 57 // 9 key (ASCII)

	KeyEsc       Key = 256 // Escape key (GLFW)
	KeyEnter     Key = 257 // Enter key (GLFW)
	KeyBackspace Key = 259 // Backspace key (GLFW)
	KeyRight     Key = 262 // Right arrow (GLFW)
	KeyLeft      Key = 263 // Left arrow (GLFW)
	KeyDown      Key = 264 // Down arrow (GLFW)
	KeyUp        Key = 265 // Up arrow (GLFW)
	KeyPageUp    Key = 266 // Page Up (GLFW)
	KeyPageDown  Key = 267 // Page Down (GLFW)
	KeyHome      Key = 268 // Home (GLFW)
)

// Additional non-printable keys
const (
	KeyLeftShift  Key = 340 // Left Shift (GLFW)
	KeyRightShift Key = 344 // Right Shift (GLFW)
)

// IsArrow reports whether k is one of the four arrow keys.
func (k Key) IsArrow() bool {
	return k >= KeyRight && k <= KeyUp
}
