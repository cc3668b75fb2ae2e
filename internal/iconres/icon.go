package iconres

import "sync"

// Icon is a loaded icon resource. The owner must call Release exactly once
// when the icon is no longer shown; further calls are no-ops.
type Icon struct {
	handle  uintptr
	path    string
	builtin bool

	releaseOnce sync.Once
	release     func()
}

// NewIcon wraps a loaded handle. release may be nil for shared handles.
func NewIcon(handle uintptr, path string, release func()) *Icon {
	return &Icon{handle: handle, path: path, release: release}
}

// NewBuiltinIcon wraps the guaranteed fallback icon. Builtin icons are never destroyed.
func NewBuiltinIcon(handle uintptr) *Icon {
	return &Icon{handle: handle, builtin: true}
}

// Handle returns the native icon handle (HICON on Windows).
func (i *Icon) Handle() uintptr {
	if i == nil {
		return 0
	}
	return i.handle
}

// Path returns the file the icon was loaded from, or "" for the builtin icon.
func (i *Icon) Path() string {
	if i == nil {
		return ""
	}
	return i.path
}

// Builtin reports whether this is the terminal fallback icon.
func (i *Icon) Builtin() bool {
	return i != nil && i.builtin
}

// Source describes where the icon came from, for logs and status replies.
func (i *Icon) Source() string {
	switch {
	case i == nil:
		return "none"
	case i.builtin:
		return "builtin"
	default:
		return i.path
	}
}

// Release frees the native handle. Safe to call on nil and more than once.
func (i *Icon) Release() {
	if i == nil {
		return
	}
	i.releaseOnce.Do(func() {
		if i.release != nil {
			i.release()
		}
	})
}
