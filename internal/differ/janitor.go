package differ

import (
	"os"
	"path/filepath"

	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/rs/zerolog"
)

// Janitor removes old diff outputs from an output directory.
type Janitor struct {
	prefix      string
	retain      int
	fileManager *common.FileManager
	logger      zerolog.Logger
}

// NewJanitor keeps the newest retain outputs named <prefix>*.png. retain <= 0 disables pruning.
func NewJanitor(prefix string, retain int, logger zerolog.Logger) *Janitor {
	jLogger := logger.With().Str("component", "OutputJanitor").Logger()
	return &Janitor{
		prefix:      prefix,
		retain:      retain,
		fileManager: common.NewFileManager(jLogger),
		logger:      jLogger,
	}
}

// Prune deletes outputs in dir beyond the retention count, each with its display
// thumbnail. keep is never removed and counts toward the retained set. It
// returns the number of outputs deleted.
func (j *Janitor) Prune(dir, keep string) (int, error) {
	if j.retain <= 0 {
		return 0, nil
	}

	files, err := j.fileManager.ListFiles(dir, j.prefix, outputExtension)
	if err != nil {
		return 0, err
	}

	kept := 0
	if keep != "" {
		kept = 1
	}

	var errs []error
	removed := 0
	for _, f := range files {
		if f.Path == keep {
			continue
		}
		if kept < j.retain {
			kept++
			continue
		}
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, common.WrapErrorf(err, "failed to remove %s", f.Path))
			continue
		}
		removed++

		thumb := filepath.Join(dir, config.ThumbnailDirName, f.Name)
		if err := os.Remove(thumb); err != nil && !os.IsNotExist(err) {
			errs = append(errs, common.WrapErrorf(err, "failed to remove %s", thumb))
		}
	}

	if removed > 0 {
		j.logger.Debug().Str("dir", dir).Int("removed", removed).Int("retain", j.retain).Msg("Pruned old diff outputs")
	}
	return removed, common.CombineErrors(errs)
}
