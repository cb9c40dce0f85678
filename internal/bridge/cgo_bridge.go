//go:build odiff_cgo

package bridge

/*
#cgo LDFLAGS: -lodiff
#include <stdlib.h>

typedef struct {
	int antialiasing;
	int output_diff_mask;
	float diff_overlay_factor;
	int diff_lines;
	unsigned int diff_pixel;
	double threshold;
	int fail_on_layout_change;
	int enable_asm;
	size_t ignore_region_count;
	void *ignore_regions;
} CDiffOptions;

typedef struct {
	int result_type;
	unsigned int diff_count;
	double diff_percentage;
	size_t diff_line_count;
	unsigned int *diff_lines;
	const char *diff_output_path;
} CDiffResult;

typedef struct {
	unsigned int x1;
	unsigned int y1;
	unsigned int x2;
	unsigned int y2;
} CIgnoreRegion;

int odiff_diff(const char *base_image_path, const char *comp_image_path, const char *diff_output_path, CDiffOptions options);
int odiff_diff_with_results(const char *base_image_path, const char *comp_image_path, const char *diff_output_path, CDiffOptions options, CDiffResult *out_result);
void odiff_free_diff_lines(unsigned int *diff_lines, size_t count);
*/
import "C"

import (
	"unsafe"

	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/rs/zerolog"
)

// CgoBridge calls libodiff in process.
type CgoBridge struct {
	logger zerolog.Logger
}

// NewCgoBridge creates a CgoBridge.
func NewCgoBridge(logger zerolog.Logger) *CgoBridge {
	return &CgoBridge{logger: logger.With().Str("component", "CgoBridge").Logger()}
}

func newNativeBridge(logger zerolog.Logger) (NativeDiffBridge, error) {
	return NewCgoBridge(logger), nil
}

func cBool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

// toCOptions converts options. The returned free func releases the ignore region array.
func toCOptions(options models.DiffOptions) (C.CDiffOptions, func()) {
	copts := C.CDiffOptions{
		antialiasing:          cBool(options.Antialiasing),
		output_diff_mask:      cBool(options.OutputDiffMask),
		diff_overlay_factor:   C.float(options.DiffOverlayFactor),
		diff_lines:            cBool(options.DiffLines),
		diff_pixel:            C.uint(cBool(options.DiffPixel)),
		threshold:             C.double(options.Threshold),
		fail_on_layout_change: cBool(options.FailOnLayoutChange),
		enable_asm:            cBool(options.EnableAsm),
	}

	n := len(options.IgnoreRegions)
	if n == 0 {
		return copts, func() {}
	}

	ptr := C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.CIgnoreRegion{})))
	regions := unsafe.Slice((*C.CIgnoreRegion)(ptr), n)
	for i, r := range options.IgnoreRegions {
		regions[i] = C.CIgnoreRegion{x1: C.uint(r.X1), y1: C.uint(r.Y1), x2: C.uint(r.X2), y2: C.uint(r.Y2)}
	}
	copts.ignore_region_count = C.size_t(n)
	copts.ignore_regions = ptr
	return copts, func() { C.free(ptr) }
}

func (b *CgoBridge) Diff(basePath, compPath, outputPath string, options models.DiffOptions) int32 {
	cBase, cComp, cOut := C.CString(basePath), C.CString(compPath), C.CString(outputPath)
	defer C.free(unsafe.Pointer(cBase))
	defer C.free(unsafe.Pointer(cComp))
	defer C.free(unsafe.Pointer(cOut))

	copts, freeOpts := toCOptions(options)
	defer freeOpts()

	code := int32(C.odiff_diff(cBase, cComp, cOut, copts))
	b.logger.Debug().Int32("code", code).Str("code_name", Code(code).String()).Msg("odiff_diff returned")
	return code
}

// DiffWithResults copies diff lines into Go memory and frees the native array.
func (b *CgoBridge) DiffWithResults(basePath, compPath, outputPath string, options models.DiffOptions) (models.DiffResult, int32) {
	cBase, cComp, cOut := C.CString(basePath), C.CString(compPath), C.CString(outputPath)
	defer C.free(unsafe.Pointer(cBase))
	defer C.free(unsafe.Pointer(cComp))
	defer C.free(unsafe.Pointer(cOut))

	copts, freeOpts := toCOptions(options)
	defer freeOpts()

	var cres C.CDiffResult
	code := int32(C.odiff_diff_with_results(cBase, cComp, cOut, copts, &cres))
	if code != 0 {
		return models.DiffResult{}, code
	}

	result := models.DiffResult{
		ResultType:     models.ResultType(cres.result_type),
		DiffCount:      int32(cres.diff_count),
		DiffPercentage: float64(cres.diff_percentage),
		DiffLineCount:  uint64(cres.diff_line_count),
	}
	if cres.diff_lines != nil && cres.diff_line_count > 0 {
		lines := unsafe.Slice((*uint32)(unsafe.Pointer(cres.diff_lines)), int(cres.diff_line_count))
		result.DiffLines = append([]uint32(nil), lines...)
		C.odiff_free_diff_lines(cres.diff_lines, cres.diff_line_count)
	}
	if cres.diff_output_path != nil {
		result.DiffOutputPath = C.GoString(cres.diff_output_path)
	}
	return result, 0
}
