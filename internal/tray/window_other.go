//go:build !windows

package tray

// Window is unavailable off Windows.
type Window struct{}

// New always fails off Windows.
func New(Events, string) (*Window, error) {
	return nil, ErrUnsupported
}
