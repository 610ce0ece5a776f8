package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyMinus = 45 // - key (ASCII)
	KeyEqual = 61 // = key (ASCII)
	KeyEsc   = 256

	Key0 = 48 // 0 key (ASCII)
	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
	Key5 = 53 // 5 key (ASCII)
	Key6 = 54 // 6 key (ASCII)
	Key7 = 55 // 7 key (ASCII)
	Key8 = 56 // 8 key (ASCII)
	Key9 = 57 // 9 key (ASCII)
)

// Arrow keys
const (
	KeyRight = 262 // Right arrow (GLFW)
	KeyLeft  = 263 // Left arrow (GLFW)
	KeyDown  = 264 // Down arrow (GLFW)
	KeyUp    = 265 // Up arrow (GLFW)
)

// DigitIndex maps the digit keys 1..9 to the indices 0..8 and 0 to 9.
//
// Parameters:
//   - keyCode: a virtual key code
//
// Returns:
//   - int: the index
//   - bool: false if keyCode is not a digit key
func DigitIndex(keyCode uint32) (int, bool) {
	switch {
	case keyCode == Key0:
		return 9, true
	case keyCode >= Key1 && keyCode <= Key9:
		return int(keyCode - Key1), true
	default:
		return 0, false
	}
}
