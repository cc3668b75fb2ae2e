package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

const (
	defaultPipeDialTimeout = 2 * time.Second
	defaultPipeRWTimeout   = 5 * time.Second
)

// test seam
var dialPipeFn = dialPipe

// Send sends one request and waits for one response.
func Send(ctx context.Context, pipeName string, req Request) (Response, error) {
	dialCtx, cancel := context.WithTimeout(ctx, defaultPipeDialTimeout)
	defer cancel()
	conn, err := dialPipeFn(dialCtx, pipeName)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(defaultPipeRWTimeout)); err != nil {
		return Response{}, fmt.Errorf("set deadline: %w", err)
	}

	rawReq, err := encodeRequest(req)
	if err != nil {
		return Response{}, err
	}
	if _, err := conn.Write(append(rawReq, '\n')); err != nil {
		return Response{}, err
	}

	respRaw, err := readDelimitedFrame(bufio.NewReaderSize(conn, maxPipeResponseBytes+1), maxPipeResponseBytes)
	if err != nil {
		return Response{}, err
	}
	resp, err := decodeResponse(respRaw)
	if err != nil {
		return Response{}, fmt.Errorf("invalid response: %w", err)
	}
	return resp, nil
}

// IsConnectionError reports whether err means no server is listening.
// Opening a named pipe that does not exist fails with an *os.PathError
// (Op "open"); socket dials fail with a *net.OpError.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnsupported) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Op == "open"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" || opErr.Op == "open"
	}
	return false
}
