package driver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandValidation(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"valid navigate", Navigate{URL: "https://example.com"}, false},
		{"navigate without url", Navigate{}, true},
		{"valid evaluate", Evaluate{Expression: "2 + 2"}, false},
		{"evaluate without expression", Evaluate{}, true},
		{"valid click", Click{Selector: "#go"}, false},
		{"click without selector", Click{}, true},
		{"valid fill", Fill{Selector: "#name", Value: "John"}, false},
		{"fill with empty value is allowed", Fill{Selector: "#name"}, false},
		{"fill without selector", Fill{Value: "x"}, true},
		{"valid screenshot", Screenshot{Path: "/tmp/shot.png"}, false},
		{"screenshot without path", Screenshot{}, true},
		{"close", closeCommand{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodeCommand(t *testing.T) {
	payload, err := encodeCommand(7, Fill{Selector: "#name", Value: "John"})
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.Equal(t, uint64(7), env.ID)
	assert.Equal(t, "fill", env.Action)
	assert.Equal(t, "#name", env.Params["selector"])
	assert.Equal(t, "John", env.Params["value"])
}

func TestCommandActions(t *testing.T) {
	assert.Equal(t, "navigate", Navigate{}.action())
	assert.Equal(t, "evaluate", Evaluate{}.action())
	assert.Equal(t, "click", Click{}.action())
	assert.Equal(t, "fill", Fill{}.action())
	assert.Equal(t, "screenshot", Screenshot{}.action())
	assert.Equal(t, "close", closeCommand{}.action())
}
