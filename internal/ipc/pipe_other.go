//go:build !windows

package ipc

import (
	"context"
	"net"
)

func listenPipe(string) (net.Listener, error) {
	return nil, ErrUnsupported
}

func dialPipe(context.Context, string) (net.Conn, error) {
	return nil, ErrUnsupported
}
