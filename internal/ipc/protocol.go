// Package ipc is the per-user control channel of a running instance. A second
// launch uses it to ask the running instance to refresh instead of starting
// another tray icon.
package ipc

import (
	"encoding/json"
	"errors"
	"strings"
)

// Commands understood by the server.
const (
	CommandRefresh = "refresh"
	CommandStatus  = "status"
)

// ErrUnsupported is returned where named pipes do not exist.
var ErrUnsupported = errors.New("ipc: named pipes are not supported on this platform")

// Request is a single control command.
type Request struct {
	Command string `json:"command"`
}

// Status describes the running instance.
type Status struct {
	Language    uint16   `json:"language"`
	LanguageHex string   `json:"language_hex"`
	Tooltip     string   `json:"tooltip"`
	IconSource  string   `json:"icon_source"`
	Published   bool     `json:"published"`
	Strategies  []string `json:"strategies"`
	IconDirs    []string `json:"icon_dirs"`
	Candidates  []string `json:"candidates,omitempty"`
	Recent      []string `json:"recent,omitempty"`
}

// Response answers a Request.
type Response struct {
	OK     bool    `json:"ok"`
	Error  string  `json:"error,omitempty"`
	Status *Status `json:"status,omitempty"`
}

// CommandExecutor handles a request and returns a response.
type CommandExecutor interface {
	Execute(req Request) Response
}

// ExecutorFunc adapts a function to CommandExecutor.
type ExecutorFunc func(req Request) Response

// Execute implements CommandExecutor.
func (f ExecutorFunc) Execute(req Request) Response { return f(req) }

// ErrorResponse builds a failed response.
func ErrorResponse(msg string) Response {
	return Response{OK: false, Error: msg}
}

func encodeRequest(req Request) ([]byte, error) {
	return json.Marshal(req)
}

func decodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, err
	}
	req.Command = strings.ToLower(strings.TrimSpace(req.Command))
	if req.Command == "" {
		return Request{}, errors.New("command is required")
	}
	return req, nil
}

func encodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}

func decodeResponse(raw []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
