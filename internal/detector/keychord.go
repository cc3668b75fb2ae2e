package detector

// Key classifies a virtual key for chord recognition.
type Key uint8

const (
	KeyOther Key = iota
	KeyAlt
	KeyCtrl
	KeyShift
	KeyMeta
	KeySpace
)

func (k Key) String() string {
	switch k {
	case KeyAlt:
		return "alt"
	case KeyCtrl:
		return "ctrl"
	case KeyShift:
		return "shift"
	case KeyMeta:
		return "meta"
	case KeySpace:
		return "space"
	default:
		return "other"
	}
}

// Windows virtual-key codes.
const (
	vkShift    = 0x10
	vkControl  = 0x11
	vkMenu     = 0x12
	vkSpace    = 0x20
	vkLWin     = 0x5B
	vkRWin     = 0x5C
	vkLShift   = 0xA0
	vkRShift   = 0xA1
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5
)

// KeyFromVK maps a virtual-key code to a Key.
func KeyFromVK(vk uint32) Key {
	switch vk {
	case vkMenu, vkLMenu, vkRMenu:
		return KeyAlt
	case vkControl, vkLControl, vkRControl:
		return KeyCtrl
	case vkShift, vkLShift, vkRShift:
		return KeyShift
	case vkLWin, vkRWin:
		return KeyMeta
	case vkSpace:
		return KeySpace
	default:
		return KeyOther
	}
}

// KeyEvent is one key transition observed system-wide.
type KeyEvent struct {
	Key  Key
	Down bool
}

// Modifiers is the held state of the modifier keys as seen by the observer.
// Missed key-ups correct themselves on the next event for that key.
type Modifiers struct {
	Alt   bool
	Ctrl  bool
	Shift bool
	Meta  bool
}

func (m Modifiers) with(k Key, held bool) Modifiers {
	switch k {
	case KeyAlt:
		m.Alt = held
	case KeyCtrl:
		m.Ctrl = held
	case KeyShift:
		m.Shift = held
	case KeyMeta:
		m.Meta = held
	}
	return m
}

// Step applies ev to m and reports whether ev completes a layout-switch chord.
// A key-down is applied before the chord rules are checked, so the chord fires
// on the second key of the pair. Key-ups never trigger.
func Step(m Modifiers, ev KeyEvent) (Modifiers, bool) {
	if !ev.Down {
		return m.with(ev.Key, false), false
	}
	m = m.with(ev.Key, true)
	switch ev.Key {
	case KeyShift:
		return m, m.Alt || m.Ctrl
	case KeyAlt, KeyCtrl:
		return m, m.Shift
	case KeySpace:
		return m, m.Meta
	default:
		return m, false
	}
}
