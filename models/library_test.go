package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryIdentifier_String(t *testing.T) {
	assert.Equal(t, "u/42", UserLibrary(42).String())
	assert.Equal(t, "g/7", GroupLibrary(7).String())
}

func TestLibraryIdentifier_APIPath(t *testing.T) {
	assert.Equal(t, "users/42", UserLibrary(42).APIPath())
	assert.Equal(t, "groups/7", GroupLibrary(7).APIPath())
}

func TestLibraryIdentifier_IsGroup(t *testing.T) {
	assert.False(t, UserLibrary(42).IsGroup())
	assert.True(t, GroupLibrary(7).IsGroup())
}

func TestParseLibraryIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    LibraryIdentifier
		wantErr bool
	}{
		{name: "user library", input: "u/42", want: UserLibrary(42)},
		{name: "group library", input: "g/7", want: GroupLibrary(7)},
		{name: "unknown prefix", input: "x/1", wantErr: true},
		{name: "missing separator", input: "u42", wantErr: true},
		{name: "non-numeric id", input: "u/abc", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLibraryIdentifier(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParseLibraryIdentifier_RoundTrip verifies that String output always
// parses back to the original identifier.
func TestParseLibraryIdentifier_RoundTrip(t *testing.T) {
	for _, lib := range []LibraryIdentifier{UserLibrary(1), GroupLibrary(99)} {
		parsed, err := ParseLibraryIdentifier(lib.String())
		require.NoError(t, err)
		assert.Equal(t, lib, parsed)
	}
}
