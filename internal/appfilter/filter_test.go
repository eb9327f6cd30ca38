package appfilter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldTrigger(t *testing.T) {
	f := Default()

	tests := []struct {
		name string
		want bool
	}{
		{"curl", true},
		{"vim", true},
		{"firefox", true},
		{"javac", false},
		{"pythonista", false},
		{"nodemon", false},
		{"wingman", false},
		{"Wingman", false},
		{"wingman-panel", false},
		{"python", false},
		{"python3", false},
		{"python3.12", false},
		{"pythonw", false},
		{"node", false},
		{"perl5.36", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.ShouldTrigger(tt.name))
		})
	}
}

func TestWordBoundary(t *testing.T) {
	f := Default().WithWordBoundary(true)

	tests := []struct {
		name string
		want bool
	}{
		{"pythonista", true},
		{"nodemon", true},
		{"javac", true},
		{"python3.12", false},
		{"python-config", false},
		{"node", false},
		{"perl5.36", false},
		{"wingman", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.ShouldTrigger(tt.name))
		})
	}
}

func TestExceptions(t *testing.T) {
	f := New(DefaultInterpreters, []string{" Xfce4-Panel ", ""})
	assert.False(t, f.ShouldTrigger("xfce4-panel"))
	assert.True(t, f.ShouldTrigger("xfce4-terminal"))
}

func TestZeroValue(t *testing.T) {
	var f Filter
	assert.True(t, f.ShouldTrigger("python3"))
	assert.False(t, f.ShouldTrigger("wingman"))
	assert.False(t, f.ShouldTrigger(""))
}

func TestShouldTriggerIsTotal(t *testing.T) {
	inputs := []string{"\x00", "\xff\xfe", strings.Repeat("a", 1<<16), "名前", "-", "/usr/bin/env"}
	f := Default()
	for _, in := range inputs {
		assert.NotPanics(t, func() { f.ShouldTrigger(in) })
	}
}
