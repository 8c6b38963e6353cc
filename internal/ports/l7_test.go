package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestL7Name(t *testing.T) {
	tests := []struct {
		port uint16
		want string
	}{
		{0, "na"},
		{80, "http"},
		{443, "https"},
		{5432, "postgres"},
		{65000, "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, L7Name(tt.port))
	}
}
