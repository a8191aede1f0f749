package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "golang", "%golang%"},
		{"Percent", "100%", `%100\%%`},
		{"Underscore", "snake_case", `%snake\_case%`},
		{"Backslash", `C:\tmp`, `%C:\\tmp%`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.in))
		})
	}
}
