package driver

import (
	"encoding/json"
	"errors"
)

// Command is the closed set of requests the engine protocol understands.
// Each variant validates its own parameters before anything touches the
// filesystem, so malformed requests never reach the bootstrap script.
type Command interface {
	action() string
	params() map[string]any
	validate() error
}

// Navigate loads a URL and returns the serialized document markup after
// the settle delay.
type Navigate struct {
	URL string
}

func (c Navigate) action() string { return "navigate" }

func (c Navigate) params() map[string]any { return map[string]any{"url": c.URL} }

func (c Navigate) validate() error {
	if c.URL == "" {
		return errors.New("navigate: url is required")
	}
	return nil
}

// Evaluate runs a JavaScript expression in the page context and returns
// whatever JSON-compatible value it produces.
type Evaluate struct {
	Expression string
}

func (c Evaluate) action() string { return "evaluate" }

func (c Evaluate) params() map[string]any { return map[string]any{"expression": c.Expression} }

func (c Evaluate) validate() error {
	if c.Expression == "" {
		return errors.New("evaluate: expression is required")
	}
	return nil
}

// Click dispatches a synthesized mouse click on the first element matching
// the selector. The engine returns false, not an error, when no element
// matches.
type Click struct {
	Selector string
}

func (c Click) action() string { return "click" }

func (c Click) params() map[string]any { return map[string]any{"selector": c.Selector} }

func (c Click) validate() error {
	if c.Selector == "" {
		return errors.New("click: selector is required")
	}
	return nil
}

// Fill sets the value of the first element matching the selector and
// dispatches input and change events. The engine returns false when no
// element matches.
type Fill struct {
	Selector string
	Value    string
}

func (c Fill) action() string { return "fill" }

func (c Fill) params() map[string]any {
	return map[string]any{"selector": c.Selector, "value": c.Value}
}

func (c Fill) validate() error {
	if c.Selector == "" {
		return errors.New("fill: selector is required")
	}
	return nil
}

// Screenshot renders the current page to the given path on the engine's
// filesystem.
type Screenshot struct {
	Path string
}

func (c Screenshot) action() string { return "screenshot" }

func (c Screenshot) params() map[string]any { return map[string]any{"path": c.Path} }

func (c Screenshot) validate() error {
	if c.Path == "" {
		return errors.New("screenshot: path is required")
	}
	return nil
}

// closeCommand asks the engine to exit. Terminal: no response is written.
type closeCommand struct{}

func (closeCommand) action() string         { return "close" }
func (closeCommand) params() map[string]any { return map[string]any{} }
func (closeCommand) validate() error        { return nil }

// envelope is the wire form of a command. The id is echoed back by the
// bootstrap script so the dispatcher can discard stale responses.
type envelope struct {
	ID     uint64         `json:"id"`
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// response is the wire form of an engine result.
type response struct {
	ID      uint64 `json:"id"`
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	responseTypeResult = "result"
	responseTypeError  = "error"
)

func encodeCommand(id uint64, cmd Command) ([]byte, error) {
	return json.Marshal(envelope{ID: id, Action: cmd.action(), Params: cmd.params()})
}
