// Package bridge is the boundary to the native odiff routine.
//
// The native routine receives two readable image paths, a writable output
// path and a DiffOptions value, and returns an integer status where 0 means
// success. Adapters either call the library directly (cgo) or run the odiff
// command line tool.
package bridge

import "github.com/aleister1102/odiffkit/internal/models"

// NativeDiffBridge invokes the native diff routine synchronously.
type NativeDiffBridge interface {
	Diff(basePath, compPath, outputPath string, options models.DiffOptions) int32
}

// ResultBridge is implemented by adapters that can also report diff metrics.
type ResultBridge interface {
	NativeDiffBridge
	DiffWithResults(basePath, compPath, outputPath string, options models.DiffOptions) (models.DiffResult, int32)
}

// Func adapts a plain function to NativeDiffBridge.
type Func func(basePath, compPath, outputPath string, options models.DiffOptions) int32

func (f Func) Diff(basePath, compPath, outputPath string, options models.DiffOptions) int32 {
	return f(basePath, compPath, outputPath, options)
}
