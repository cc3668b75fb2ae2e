//go:build windows

package winapi

import (
	"fmt"

	"golang.org/x/sys/windows"
)

const swShowNormal = 1

// OpenFolder shows dir in Explorer.
func OpenFolder(dir string) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	target, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return fmt.Errorf("folder path %q: %w", dir, err)
	}
	if err := windows.ShellExecute(0, verb, target, nil, nil, swShowNormal); err != nil {
		return fmt.Errorf("ShellExecute %q: %w", dir, err)
	}
	return nil
}
