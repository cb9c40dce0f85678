// Package display is the image display surface for difference images.
package display

import (
	"errors"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/dustin/go-humanize"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
)

// FallbackText is shown when there is no image to display.
const FallbackText = "No difference image available"

const defaultThumbnailSize = 256

// Rendering describes what the surface shows for one path.
type Rendering struct {
	Path      string
	Format    string
	Width     int
	Height    int
	SizeBytes int64
	HumanSize string
	// ThumbnailPath is empty when thumbnails are disabled.
	ThumbnailPath string
	// Fallback is set instead of the fields above when nothing can be shown.
	Fallback string
}

// HasImage reports whether the rendering refers to a decoded image.
func (r Rendering) HasImage() bool {
	return r.Fallback == ""
}

// Presenter renders difference images. Thumbnails are written to a thumbs/
// directory next to the image so they never mix with diff outputs; the output
// janitor removes them together with their image.
type Presenter struct {
	thumbnailSize uint
	fileManager   *common.FileManager
	logger        zerolog.Logger
}

// NewPresenter creates a Presenter writing thumbnails of at most thumbnailSize
// pixels per side. 0 uses the default; a negative size disables thumbnails.
func NewPresenter(thumbnailSize int, logger zerolog.Logger) *Presenter {
	pLogger := logger.With().Str("component", "DisplayPresenter").Logger()
	size := uint(defaultThumbnailSize)
	switch {
	case thumbnailSize < 0:
		size = 0
	case thumbnailSize > 0:
		size = uint(thumbnailSize)
	}
	return &Presenter{
		thumbnailSize: size,
		fileManager:   common.NewFileManager(pLogger),
		logger:        pLogger,
	}
}

// Render decodes the image at path. An empty path or a path with no file
// behind it (the native routine wrote nothing) yields the fallback text.
// Unreadable images yield the fallback text and an error.
func (p *Presenter) Render(path string) (Rendering, error) {
	if path == "" {
		return Rendering{Fallback: FallbackText}, nil
	}

	info, err := p.fileManager.GetFileInfo(path)
	if errors.Is(err, common.ErrNotFound) {
		p.logger.Debug().Str("path", path).Msg("No difference image on disk")
		return Rendering{Path: path, Fallback: FallbackText}, nil
	}
	if err != nil {
		return Rendering{Path: path, Fallback: FallbackText}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Rendering{Path: path, Fallback: FallbackText}, common.WrapError(err, "failed to open image")
	}
	defer func() { _ = f.Close() }()

	img, format, err := image.Decode(f)
	if err != nil {
		return Rendering{Path: path, Fallback: FallbackText}, common.WrapError(err, "failed to decode image "+path)
	}

	bounds := img.Bounds()
	r := Rendering{
		Path:      path,
		Format:    format,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		SizeBytes: info.Size,
		HumanSize: humanize.Bytes(uint64(info.Size)),
	}

	if p.thumbnailSize > 0 {
		thumbPath, err := p.writeThumbnail(path, img)
		if err != nil {
			p.logger.Warn().Err(err).Str("path", path).Msg("Failed to write thumbnail")
		} else {
			r.ThumbnailPath = thumbPath
		}
	}

	p.logger.Debug().
		Str("path", path).
		Str("format", format).
		Int("width", r.Width).
		Int("height", r.Height).
		Str("size", r.HumanSize).
		Msg("Rendered difference image")
	return r, nil
}

func (p *Presenter) writeThumbnail(path string, img image.Image) (string, error) {
	thumb := resize.Thumbnail(p.thumbnailSize, p.thumbnailSize, img, resize.Lanczos3)

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".png"
	thumbPath := filepath.Join(filepath.Dir(path), config.ThumbnailDirName, name)
	if err := p.fileManager.EnsureDirectory(filepath.Dir(thumbPath), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(thumbPath)
	if err != nil {
		return "", common.WrapError(err, "failed to create thumbnail")
	}
	if err := png.Encode(out, thumb); err != nil {
		_ = out.Close()
		return "", common.WrapError(err, "failed to encode thumbnail")
	}
	if err := out.Close(); err != nil {
		return "", common.WrapError(err, "failed to close thumbnail")
	}
	return thumbPath, nil
}

// Describe is a one-line summary of r for text hosts.
func (r Rendering) Describe() string {
	if !r.HasImage() {
		return r.Fallback
	}
	return r.Path + " (" + r.Format + ", " + humanize.Comma(int64(r.Width)) + "x" + humanize.Comma(int64(r.Height)) + ", " + r.HumanSize + ")"
}
