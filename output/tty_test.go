package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/currentlycurrently/acidtest/output"
)

func TestIsTTYFalseForNonFileWriter(t *testing.T) {
	assert.False(t, output.IsTTY(&bytes.Buffer{}))
}

func TestGetTerminalWidthDefaultsForNonFileWriter(t *testing.T) {
	assert.Equal(t, 80, output.GetTerminalWidth(&bytes.Buffer{}))
}
