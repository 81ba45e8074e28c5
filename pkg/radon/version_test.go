package radon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"5.1.0\n", Version{5, 1, 0}, false},
		{"  6.0 ", Version{6, 0}, false},
		{"4", Version{4}, false},
		{"", nil, true},
		{"radon 5.1", nil, true},
		{"5.x", nil, true},
		{"5..1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b Version
		want int
	}{
		{Version{5, 1}, Version{5, 1, 0}, 0},
		{Version{5, 0}, Version{5, 1}, -1},
		{Version{6}, Version{5, 9, 9}, 1},
		{Version{5, 1, 0, 1}, Version{5, 1}, 1},
		{Version{5, 10}, Version{5, 9}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"_vs_"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}
}

func TestRequireVersion(t *testing.T) {
	tests := []struct {
		v    Version
		pass bool
	}{
		{Version{5, 1}, true},
		{Version{5, 1, 0}, true},
		{Version{5, 2}, true},
		{Version{6, 0}, true},
		{Version{5, 0}, false},
		{Version{4, 9}, false},
		{Version{5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			err := RequireVersion(tt.v)
			if tt.pass {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, UnsupportedToolVersion, CodeOf(err))
			assert.Equal(t, UnsupportedVersionMessage, err.Error())
			assert.True(t, IsRemediable(err))
		})
	}
}
