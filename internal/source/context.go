package source

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadContextText concatenates every *.txt file in dir, in name order,
// separated by a blank line. A missing directory yields "". Unreadable files
// are logged and skipped.
func LoadContextText(dir string, logger *slog.Logger) (string, error) {
	if dir == "" {
		return "", nil
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat context dir: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return "", fmt.Errorf("list context files: %w", err)
	}

	texts := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			logger.Warn("skipping unreadable context file", "path", p, "error", err)
			continue
		}
		texts = append(texts, string(data))
	}
	return strings.Join(texts, "\n\n"), nil
}
