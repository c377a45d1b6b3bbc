package library

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlist(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>Name</key><string>example</string>
	<key>Count</key><integer>42</integer>
	<key>Rate</key><real>0.5</real>
	<key>Compilation</key><true/>
	<key>Hidden</key><false/>
	<key>Items</key>
	<array>
		<string>a</string>
		<integer>1</integer>
	</array>
	<key>Nested</key>
	<dict>
		<key>Inner</key><string>value</string>
	</dict>
</dict>
</plist>`

	root, _, err := parsePlist(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "example", root["Name"])
	assert.Equal(t, int64(42), root["Count"])
	assert.Equal(t, 0.5, root["Rate"])
	assert.Equal(t, true, root["Compilation"])
	assert.Equal(t, false, root["Hidden"])
	assert.Equal(t, []any{"a", int64(1)}, root["Items"])

	nested, ok := root["Nested"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "value", nested["Inner"])
}

func TestParsePlistErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "empty input",
			input: "",
		},
		{
			name:  "wrong root element",
			input: "<html><body/></html>",
		},
		{
			name:  "truncated dict",
			input: "<plist><dict><key>Tracks</key>",
		},
		{
			name:  "value without key",
			input: "<plist><dict><string>orphan</string></dict></plist>",
		},
		{
			name:  "unsupported element",
			input: "<plist><dict><key>X</key><blob>?</blob></dict></plist>",
		},
		{
			name:  "non-numeric integer",
			input: "<plist><dict><key>N</key><integer>abc</integer></dict></plist>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, _, err := parsePlist(strings.NewReader(tt.input))
			assert.Error(t, err)
			assert.Nil(t, root)
		})
	}
}

func TestDecodeLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		expected string
		wantErr  bool
	}{
		{
			name:     "localhost prefix",
			location: "file://localhost/Users/me/Music/song.mp3",
			expected: "/Users/me/Music/song.mp3",
		},
		{
			name:     "plain file prefix",
			location: "file:///Users/me/Music/song.mp3",
			expected: "/Users/me/Music/song.mp3",
		},
		{
			name:     "escaped spaces",
			location: "file://localhost/Users/me/Music/My%20Song.mp3",
			expected: "/Users/me/Music/My Song.mp3",
		},
		{
			name:     "empty",
			location: "",
			wantErr:  true,
		},
		{
			name:     "bad escape",
			location: "file:///Users/me/%zz.mp3",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := DecodeLocation(tt.location)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, path)
			}
		})
	}
}
