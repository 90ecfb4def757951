package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMillis(t *testing.T) {
	tests := []struct {
		ms   int
		want string
	}{
		{ms: 9870, want: "9.87"},
		{ms: 9874, want: "9.87"},
		{ms: 9875, want: "9.88"},
		{ms: 62350, want: "1:02.35"},
		{ms: 599999, want: "10:00.00"},
		{ms: 0, want: "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMillis(tt.ms))
		})
	}
}
