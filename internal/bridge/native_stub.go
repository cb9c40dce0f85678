//go:build !odiff_cgo

package bridge

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrNativeUnavailable is returned when the binary was built without libodiff.
var ErrNativeUnavailable = errors.New("native odiff bridge not compiled in (build with -tags odiff_cgo)")

func newNativeBridge(_ zerolog.Logger) (NativeDiffBridge, error) {
	return nil, ErrNativeUnavailable
}
