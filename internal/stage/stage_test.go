package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultOK(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   bool
	}{
		{"success true", Result{"success": true}, true},
		{"success false", Result{"success": false}, false},
		{"success missing", Result{"message": "hi"}, false},
		{"success wrong type", Result{"success": "yes"}, false},
		{"nil result", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.OK())
		})
	}
}

func TestResultMessage(t *testing.T) {
	assert.Equal(t, "no eligible todos", Result{"message": "no eligible todos"}.Message())
	assert.Equal(t, "", Result{}.Message())
}

func TestSkipped(t *testing.T) {
	result := Skipped("No PR URL found")
	assert.True(t, result.OK())
	assert.Equal(t, "No PR URL found", result.Message())
}
