package prompt

import (
	"errors"
	"fmt"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"s", false, true},
		{"S", false, true},
		{"sí", false, true},
		{"yes", false, true},
		{"n", true, false},
		{" NO ", true, false},
		{"", true, true},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q/%v", tt.input, tt.def), func(t *testing.T) {
			got, err := ParseAnswer(tt.input, tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAnswer("quizás", false)
	assert.Error(t, err)
}

func TestIsAborted(t *testing.T) {
	assert.True(t, IsAborted(promptui.ErrInterrupt))
	assert.True(t, IsAborted(promptui.ErrEOF))
	assert.True(t, IsAborted(fmt.Errorf("wrapped: %w", ErrAborted)))
	assert.False(t, IsAborted(errors.New("boom")))

	assert.Nil(t, wrapError(nil))
	assert.Equal(t, ErrAborted, wrapError(promptui.ErrInterrupt))
}

func TestNotBlank(t *testing.T) {
	assert.Error(t, NotBlank(""))
	assert.Error(t, NotBlank("   "))
	assert.NoError(t, NotBlank("a.txt"))
}

func TestConfirmWithForce(t *testing.T) {
	ok, err := ConfirmWithForce("overwrite?", true)
	require.NoError(t, err)
	assert.True(t, ok)
}
