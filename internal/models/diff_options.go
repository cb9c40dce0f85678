package models

// DefaultThreshold is the colour-distance threshold odiff uses when none is given.
const DefaultThreshold = 0.1

// IgnoreRegion is an inclusive pixel rectangle excluded from comparison.
type IgnoreRegion struct {
	X1 uint32 `json:"x1" yaml:"x1"`
	Y1 uint32 `json:"y1" yaml:"y1"`
	X2 uint32 `json:"x2" yaml:"x2"`
	Y2 uint32 `json:"y2" yaml:"y2"`
}

// DiffOptions configures one invocation of the native diff routine.
//
// Options are built fresh for every request and passed by value. Threshold is
// passed through untouched; the native side owns its interpretation.
type DiffOptions struct {
	Antialiasing       bool    `json:"antialiasing" yaml:"antialiasing"`
	OutputDiffMask     bool    `json:"output_diff_mask" yaml:"output_diff_mask"`
	DiffOverlayFactor  float32 `json:"diff_overlay_factor" yaml:"diff_overlay_factor"`
	DiffLines          bool    `json:"diff_lines" yaml:"diff_lines"`
	DiffPixel          bool    `json:"diff_pixel" yaml:"diff_pixel"`
	Threshold          float64 `json:"threshold" yaml:"threshold"`
	FailOnLayoutChange bool    `json:"fail_on_layout_change" yaml:"fail_on_layout_change"`
	EnableAsm          bool    `json:"enable_asm" yaml:"enable_asm"`

	// IgnoreRegions stays nil for every request the app issues. Adapters that
	// need native memory copy it for the duration of a single call.
	IgnoreRegions []IgnoreRegion `json:"ignore_regions,omitempty" yaml:"ignore_regions,omitempty"`
}

// DefaultDiffOptions returns the options used when the caller has no preference.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		Threshold: DefaultThreshold,
	}
}

// IgnoreRegionCount is the number of ignore regions handed to the native side.
func (o DiffOptions) IgnoreRegionCount() uint64 {
	return uint64(len(o.IgnoreRegions))
}
