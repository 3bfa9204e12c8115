package main

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wirechan/internal/config"
	"github.com/wippyai/wirechan/internal/sample"
)

func encodeYAML(t *testing.T, typeName, value string) []byte {
	t.Helper()
	var out bytes.Buffer
	err := run(config.Default(), options{typeName: typeName, encodePath: "-"}, strings.NewReader(value), &out)
	require.NoError(t, err)
	return out.Bytes()
}

func TestRun_EncodeDecode(t *testing.T) {
	data := encodeYAML(t, "mammal", "animal_string: alpha\nmammal_string: beta\n")
	assert.Equal(t, []byte{5, 0, 0, 0, 'a', 'l', 'p', 'h', 'a', 4, 0, 0, 0, 'b', 'e', 't', 'a'}, data)

	var out bytes.Buffer
	err := run(config.Default(), options{typeName: "mammal", decodePath: "-"}, bytes.NewReader(data), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "animal_string: alpha")
	assert.Contains(t, out.String(), "mammal_string: beta")
}

func TestRun_Creature(t *testing.T) {
	data := encodeYAML(t, "creature", "kind: boar\nanimal_string: a\nmammal_string: m\nboar_string: b\n")
	require.NotEmpty(t, data)
	assert.Equal(t, byte(2), data[0])

	var out bytes.Buffer
	err := run(config.Default(), options{typeName: "creature", decodePath: "-"}, bytes.NewReader(data), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "kind: boar")
}

func TestRun_Trace(t *testing.T) {
	data := encodeYAML(t, "foo", "foo_colour: {a: 1}\nmessage: hi\n")

	var out bytes.Buffer
	err := run(config.Default(), options{typeName: "foo", decodePath: "-", trace: true}, bytes.NewReader(data), &out)
	require.NoError(t, err)

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 8)
	assert.Contains(t, lines[0], "sample.Foo")
	assert.Contains(t, lines[1], "sample.Colour")
	assert.Contains(t, lines[2], "uint8")
}

func TestRun_Errors(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name  string
		opts  options
		input string
		want  string
	}{
		{"unknown type", options{typeName: "nope", encodePath: "-"}, "", "unknown type"},
		{"bad yaml", options{typeName: "foo", encodePath: "-"}, "message: [", "parse foo"},
		{"bad creature", options{typeName: "creature", encodePath: "-"}, "kind: dragon\n", "unknown creature kind"},
		{"truncated", options{typeName: "mammal", decodePath: "-"}, "\x05\x00\x00\x00al", "malformed_stream"},
		{"trailing", options{typeName: "animal", decodePath: "-"}, "\x01\x00\x00\x00ax", "trailing bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(cfg, tt.opts, strings.NewReader(tt.input), &out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_Limits(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.MaxStringLen = 3

	var out bytes.Buffer
	err := run(cfg, options{typeName: "animal", encodePath: "-"}, strings.NewReader("animal_string: toolong\n"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflow")
	assert.Zero(t, out.Len())
}

func TestRun_Schema(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(config.Default(), options{schema: true}, nil, &out))
	assert.Contains(t, out.String(), "sample.Colour")
	assert.Contains(t, out.String(), "record { a: u8, r: u8, g: u8, b: u8 }")
	assert.Contains(t, out.String(), "variant {")
}

func TestTraceModel(t *testing.T) {
	reg, err := sample.NewRegistry()
	require.NoError(t, err)
	data := encodeYAML(t, "foo", "message: hi\n")
	doc, err := lookupDocument("foo")
	require.NoError(t, err)

	v, events, err := decodeTraced(config.Default(), reg, doc, data)
	require.NoError(t, err)

	m := newTraceModel("foo", data, events, v, nil)
	assert.Len(t, m.visible, len(events))
	assert.Contains(t, m.View(), "sample.Foo")

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selected)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	assert.Equal(t, stateFilter, m.state)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("string")})
	assert.Len(t, m.visible, 1)
	assert.Equal(t, 0, m.selected)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateEvents, m.state)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	assert.Contains(t, m.View(), "message: hi")
}
