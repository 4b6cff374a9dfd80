package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorLiteral(t *testing.T) {
	tests := []struct {
		name      string
		embedding []float32
		want      string
	}{
		{
			name:      "empty",
			embedding: []float32{},
			want:      "[]",
		},
		{
			name:      "single value",
			embedding: []float32{0.5},
			want:      "[0.5]",
		},
		{
			name:      "multiple values",
			embedding: []float32{0.1, -0.25, 1},
			want:      "[0.1,-0.25,1]",
		},
		{
			name:      "zero vector",
			embedding: []float32{0, 0},
			want:      "[0,0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vectorLiteral(tt.embedding))
		})
	}
}
