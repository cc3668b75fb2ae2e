//go:build windows

package winapi

import "unsafe"

func uintptrOf[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}
