package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinURNs(t *testing.T) {
	tests := []struct {
		name string
		urns []string
		want string
	}{
		{"multiple", []string{"urn:campaign:CS101", "urn:campaign:CS102"}, "urn:campaign:CS101,urn:campaign:CS102"},
		{"single", []string{"urn:class:class1"}, "urn:class:class1"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Params.JoinURNs(tt.urns))
		})
	}
}
