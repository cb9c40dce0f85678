// Package resolver turns picker references into readable local file paths.
package resolver

import (
	"context"

	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/aleister1102/odiffkit/internal/platform"
	"github.com/rs/zerolog"
)

// ImageResolver maps an image reference to a local file path.
type ImageResolver interface {
	Resolve(ctx context.Context, ref models.ImageRef) (string, error)
}

// Resolver handles plain paths, file:// URIs and content:// URIs backed by
// the platform media index. It never writes to the index.
type Resolver struct {
	platform    platform.Context
	fileManager *common.FileManager
	logger      zerolog.Logger
}

// New creates a Resolver. platformCtx may be nil, in which case only local
// paths resolve.
func New(platformCtx platform.Context, logger zerolog.Logger) *Resolver {
	resLogger := logger.With().Str("component", "Resolver").Logger()
	return &Resolver{
		platform:    platformCtx,
		fileManager: common.NewFileManager(resLogger),
		logger:      resLogger,
	}
}

// Resolve returns the local path for ref. Every failure is a *ResolutionError.
func (r *Resolver) Resolve(ctx context.Context, ref models.ImageRef) (string, error) {
	if ref.IsEmpty() {
		return "", notFound(ref, "reference is empty", nil)
	}

	parsed, err := parseRef(ref.String())
	if err != nil {
		return "", notFound(ref, "unrecognized reference", err)
	}

	var path string
	switch parsed.Scheme {
	case SchemeFile:
		path = parsed.Path
	case SchemeContent:
		path, err = r.lookupContent(ctx, ref, parsed.Path)
		if err != nil {
			return "", err
		}
	default:
		r.logger.Debug().Str("ref", ref.String()).Str("scheme", parsed.Scheme).Msg("Reference scheme has no local projection")
		return "", notFound(ref, "scheme "+parsed.Scheme+" has no local projection", nil)
	}

	if !r.fileManager.IsRegularFile(path) {
		return "", notFound(ref, "no readable file at "+path, nil)
	}

	r.logger.Debug().Str("ref", ref.String()).Str("path", path).Msg("Reference resolved")
	return path, nil
}

func (r *Resolver) lookupContent(ctx context.Context, ref models.ImageRef, uri string) (string, error) {
	if r.platform == nil || r.platform.MediaIndex() == nil {
		return "", notFound(ref, "no media index available", nil)
	}

	path, found, err := r.platform.MediaIndex().LookupPath(ctx, uri)
	if err != nil {
		r.logger.Warn().Err(err).Str("ref", uri).Msg("Media index lookup failed")
		return "", notFound(ref, "media index lookup failed", err)
	}
	if !found {
		return "", notFound(ref, "no media index entry", nil)
	}
	if path == "" {
		return "", notFound(ref, "media entry has no local file", nil)
	}
	return path, nil
}
