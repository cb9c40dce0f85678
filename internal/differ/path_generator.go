package differ

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const (
	outputExtension       = ".png"
	maxGenerationAttempts = 16
)

// PathGenerator hands out fresh output paths inside a directory.
type PathGenerator interface {
	Generate(dir string) (string, error)
}

// UUIDPathGenerator names outputs <prefix><uuid>.png. A path is never handed
// out twice in the life of the generator, and names already on disk are skipped.
type UUIDPathGenerator struct {
	prefix   string
	newToken func() string

	mu     sync.Mutex
	issued map[string]struct{}
}

// NewUUIDPathGenerator creates a generator using prefix.
func NewUUIDPathGenerator(prefix string) *UUIDPathGenerator {
	return &UUIDPathGenerator{
		prefix:   prefix,
		newToken: uuid.NewString,
		issued:   make(map[string]struct{}),
	}
}

// Generate returns a path in dir that was not issued before and does not exist.
func (g *UUIDPathGenerator) Generate(dir string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		path := filepath.Join(dir, g.prefix+g.newToken()+outputExtension)
		if _, seen := g.issued[path]; seen {
			continue
		}
		if _, err := os.Lstat(path); err == nil {
			continue
		}
		g.issued[path] = struct{}{}
		return path, nil
	}
	return "", fmt.Errorf("could not generate a unique output path in %s after %d attempts", dir, maxGenerationAttempts)
}
