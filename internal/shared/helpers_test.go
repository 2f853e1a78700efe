package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGemVersion(t *testing.T) {
	for _, v := range []string{"1", "1.0", "1.0.0", "1.0.a", "2.3.1.rc.1", "1.0-beta", " 1.2 "} {
		assert.True(t, IsGemVersion(v), v)
	}
	for _, v := range []string{"", "a", "1..0", ">= 1", "1.0 2.0", "v1.0"} {
		assert.False(t, IsGemVersion(v), v)
	}
}

func TestGemSegments(t *testing.T) {
	assert.Equal(t, []string{"1", "0", "0"}, GemSegments("1.0.0"))
	assert.Equal(t, []string{"2", "3", "1", "rc", "1"}, GemSegments("2.3.1.rc.1"))
	assert.Equal(t, []string{"2", "3", "1", "rc", "1"}, GemSegments("2.3.1rc1"))
	assert.Equal(t, []string{"1", "0", "pre", "beta"}, GemSegments("1.0-beta"))
}

func TestIsPrerelease(t *testing.T) {
	assert.False(t, IsPrerelease("1.2.3"))
	assert.True(t, IsPrerelease("1.2.3.rc.1"))
	assert.True(t, IsPrerelease("1.0-beta"))
}

func TestGemRelease(t *testing.T) {
	assert.Equal(t, "2.3.1", GemRelease("2.3.1.rc.1"))
	assert.Equal(t, "1.0", GemRelease("1.0"))
}

func TestGemBump(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.3"},
		{"1.2", "2"},
		{"1", "2"},
		{"4.5.6", "4.6"},
		{"2.3.rc.1", "3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GemBump(tt.in), tt.in)
	}
}

func TestSplitGemRequirement(t *testing.T) {
	tests := []struct {
		raw     string
		op      string
		version string
		ok      bool
	}{
		{"~> 1.0", "~>", "1.0", true},
		{"1.0.0", "=", "1.0.0", true},
		{">=2.3.1.rc.1", ">=", "2.3.1.rc.1", true},
		{"!= 1.5", "!=", "1.5", true},
		{"=> 1.0", "", "", false},
		{"lots", "", "", false},
	}
	for _, tt := range tests {
		op, version, ok := SplitGemRequirement(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.op, op, tt.raw)
		assert.Equal(t, tt.version, version, tt.raw)
	}
}
