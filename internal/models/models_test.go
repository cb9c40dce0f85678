package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultDiffOptions(t *testing.T) {
	opts := DefaultDiffOptions()

	assert.Equal(t, DiffOptions{Threshold: 0.1}, opts)
	assert.False(t, opts.Antialiasing)
	assert.Zero(t, opts.DiffOverlayFactor)
	assert.Nil(t, opts.IgnoreRegions)
	assert.Equal(t, uint64(0), opts.IgnoreRegionCount())
}

func TestDiffOptions_IgnoreRegionCount(t *testing.T) {
	opts := DefaultDiffOptions()
	opts.IgnoreRegions = []IgnoreRegion{{X1: 0, Y1: 0, X2: 10, Y2: 10}, {X1: 5, Y1: 5, X2: 6, Y2: 6}}

	assert.Equal(t, uint64(2), opts.IgnoreRegionCount())
}

func TestImageRef_IsEmpty(t *testing.T) {
	assert.True(t, ImageRef("").IsEmpty())
	assert.True(t, ImageRef("   ").IsEmpty())
	assert.False(t, ImageRef("content://media/external/images/media/7").IsEmpty())
}

func TestResultType_String(t *testing.T) {
	assert.Equal(t, "layout", ResultTypeLayout.String())
	assert.Equal(t, "pixel", ResultTypePixel.String())
	assert.Equal(t, "unknown(9)", ResultType(9).String())
	assert.False(t, DiffResult{}.HasOutput())
	assert.True(t, DiffResult{DiffOutputPath: "/tmp/x.png"}.HasOutput())
}
