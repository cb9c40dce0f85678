package config

import "github.com/aleister1102/odiffkit/internal/models"

// DiffConfig holds the default options for every diff request of a session
type DiffConfig struct {
	Antialiasing       bool    `json:"antialiasing" yaml:"antialiasing"`
	OutputDiffMask     bool    `json:"output_diff_mask" yaml:"output_diff_mask"`
	DiffOverlayFactor  float32 `json:"diff_overlay_factor" yaml:"diff_overlay_factor" validate:"min=0"`
	DiffLines          bool    `json:"diff_lines" yaml:"diff_lines"`
	DiffPixel          bool    `json:"diff_pixel" yaml:"diff_pixel"`
	Threshold          float64 `json:"threshold" yaml:"threshold" validate:"threshold"`
	FailOnLayoutChange bool    `json:"fail_on_layout_change" yaml:"fail_on_layout_change"`
	EnableAsm          bool    `json:"enable_asm" yaml:"enable_asm"`

	IgnoreRegions []models.IgnoreRegion `json:"ignore_regions,omitempty" yaml:"ignore_regions,omitempty" validate:"dive"`
}

// NewDefaultDiffConfig creates default diff configuration
func NewDefaultDiffConfig() DiffConfig {
	return DiffConfig{
		Threshold: DefaultDiffThreshold,
	}
}

// Options converts the section into a fresh DiffOptions value
func (dc DiffConfig) Options() models.DiffOptions {
	return models.DiffOptions{
		Antialiasing:       dc.Antialiasing,
		OutputDiffMask:     dc.OutputDiffMask,
		DiffOverlayFactor:  dc.DiffOverlayFactor,
		DiffLines:          dc.DiffLines,
		DiffPixel:          dc.DiffPixel,
		Threshold:          dc.Threshold,
		FailOnLayoutChange: dc.FailOnLayoutChange,
		EnableAsm:          dc.EnableAsm,
		IgnoreRegions:      append([]models.IgnoreRegion(nil), dc.IgnoreRegions...),
	}
}
