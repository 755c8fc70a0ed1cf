package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/currentlycurrently/acidtest/output"
)

func TestPrintBannerCompactSkipsASCIIArt(t *testing.T) {
	var buf bytes.Buffer
	output.PrintBanner(&buf, "0.1.0", output.BannerOptions{ShowBanner: false, ShowVersion: true})
	assert.Equal(t, "acidtest v0.1.0\n\n", buf.String())
}

func TestPrintBannerFullIncludesLogo(t *testing.T) {
	var buf bytes.Buffer
	output.PrintBanner(&buf, "0.1.0", output.DefaultBannerOptions())
	assert.Contains(t, buf.String(), "acidtest v0.1.0")
	assert.Greater(t, buf.Len(), len("acidtest v0.1.0\n\n"))
}

func TestShouldShowBanner(t *testing.T) {
	assert.False(t, output.ShouldShowBanner(true, true))
	assert.True(t, output.ShouldShowBanner(true, false))
	assert.False(t, output.ShouldShowBanner(false, false))
}
