// Package scanner discovers PDF documents under a directory tree.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fjacquet/pdf-txt/internal/fileutils"
	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/pdferror"
)

// DefaultExtensions are matched when none are configured.
var DefaultExtensions = []string{".pdf"}

// DocumentScanner finds files with the configured extensions, at any depth.
type DocumentScanner struct {
	extensions []string
	logger     logging.Logger
}

// NewDocumentScanner creates a new DocumentScanner. Extension matching
// ignores case.
func NewDocumentScanner(extensions []string, logger logging.Logger) *DocumentScanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &DocumentScanner{
		extensions: extensions,
		logger:     logger.WithField(logging.FieldComponent, "DocumentScanner"),
	}
}

// Scan returns the matching files under root in lexical walk order.
// It returns pdferror.ErrRootNotFound when root is not a directory.
// Unreadable subdirectories are logged and skipped.
func (s *DocumentScanner) Scan(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", pdferror.ErrRootNotFound, root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.WithError(err).Warn("Error walking path", logging.F(logging.FieldFile, path))
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if fileutils.HasExtension(path, s.extensions) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
	}

	s.logger.Debug("Scan complete",
		logging.F("root", root),
		logging.F(logging.FieldCount, len(files)))
	return files, nil
}
