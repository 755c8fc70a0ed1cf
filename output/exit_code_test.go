package output_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/output"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		status   model.StatusBand
		hadError bool
		want     output.ExitCode
	}{
		{"pass", model.StatusPass, false, output.ExitOK},
		{"warn", model.StatusWarn, false, output.ExitOK},
		{"fail", model.StatusFail, false, output.ExitFail},
		{"danger", model.StatusDanger, false, output.ExitFail},
		{"error overrides pass", model.StatusPass, true, output.ExitFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, output.DetermineExitCode(tt.status, tt.hadError))
		})
	}
}
