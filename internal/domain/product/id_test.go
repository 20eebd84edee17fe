package product

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "opaque string", raw: "664f1c2d9a", want: "664f1c2d9a"},
		{name: "numeric string", raw: "7", want: "7"},
		{name: "numeric with leading zeros", raw: "007", want: "7"},
		{name: "surrounding whitespace", raw: " 12 ", want: "12"},
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace only", raw: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseID(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())
		})
	}
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		wantErr bool
	}{
		{name: "json number", data: `3`, want: "3"},
		{name: "json string", data: `"abc123"`, want: "abc123"},
		{name: "numeric json string", data: `"3"`, want: "3"},
		{name: "null rejected", data: `null`, wantErr: true},
		{name: "object rejected", data: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.data), &id)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())
		})
	}
}

func TestID_NumberAndStringResolveSameKey(t *testing.T) {
	var a, b ID
	require.NoError(t, json.Unmarshal([]byte(`5`), &a))
	require.NoError(t, json.Unmarshal([]byte(`"5"`), &b))
	assert.Equal(t, a, b)
}

func TestID_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(IDFromInt(42))
	require.NoError(t, err)
	assert.Equal(t, `"42"`, string(out))
}
