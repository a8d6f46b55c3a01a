package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpotMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantDesc string
		wantOK   bool
	}{
		{"plain spot", "spot: caught myself doomscrolling", "caught myself doomscrolling", true},
		{"uppercase prefix", "SPOT: sugar craving after lunch", "sugar craving after lunch", true},
		{"mixed case with whitespace", "  Spot:   late night snacking  ", "late night snacking", true},
		{"no prefix", "caught myself doomscrolling", "", false},
		{"prefix mid-message", "today I spot: something", "", false},
		{"empty description", "spot:   ", "", false},
		{"empty body", "", "", false},
		{"just the word spot", "spot", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, ok := ParseSpotMessage(tt.body)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}
