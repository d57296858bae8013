package ocr

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/pdf-txt/internal/logging"
	"fjacquet/pdf-txt/internal/pdferror"
)

// ModelStore keeps Tesseract traineddata files in a local directory,
// downloading missing ones from a base URL.
type ModelStore struct {
	dir     string
	baseURL string
	client  *http.Client
	logger  logging.Logger
}

// NewModelStore creates a ModelStore rooted at dir. An empty baseURL disables
// downloads: missing models are reported as errors.
func NewModelStore(dir, baseURL string, logger logging.Logger) *ModelStore {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &ModelStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		logger:  logger,
	}
}

// WithHTTPClient replaces the client used for downloads.
func (s *ModelStore) WithHTTPClient(client *http.Client) *ModelStore {
	s.client = client
	return s
}

func (s *ModelStore) Dir() string { return s.dir }

func (s *ModelStore) path(name string) string {
	return filepath.Join(s.dir, name+".traineddata")
}

// Ensure checks every named model. A zero-length file is reported as a
// corrupted cache; a missing file is downloaded.
func (s *ModelStore) Ensure(names ...string) error {
	for _, name := range names {
		info, err := os.Stat(s.path(name))
		switch {
		case err == nil && info.Size() == 0:
			return fmt.Errorf("model %s is empty: %w", name, pdferror.ErrCorruptedModelCache)
		case err == nil:
			continue
		case !os.IsNotExist(err):
			return fmt.Errorf("stat model %s: %w", name, err)
		}
		if err := s.download(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *ModelStore) download(name string) error {
	if s.baseURL == "" {
		return fmt.Errorf("model %s not found in %s and no model URL configured", name, s.dir)
	}
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("create model cache: %w", err)
	}

	url := s.baseURL + "/" + name + ".traineddata"
	s.logger.Info("Downloading OCR model",
		logging.F("model", name),
		logging.F("url", url))

	resp, err := s.client.Get(url)
	if err != nil {
		return fmt.Errorf("download model %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model %s: unexpected status %s", name, resp.Status)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.part")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("download model %s: %w", name, err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return fmt.Errorf("download model %s: got %d of %d bytes: %w", name, n, resp.ContentLength, pdferror.ErrCorruptedModelCache)
	}
	if n == 0 {
		return fmt.Errorf("download model %s: empty body: %w", name, pdferror.ErrCorruptedModelCache)
	}

	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("install model %s: %w", name, err)
	}
	return nil
}

// Purge removes the model and partial download files the store manages.
// Other files in the directory are left alone.
func (s *ModelStore) Purge() error {
	for _, pattern := range []string{"*.traineddata", "*.part"} {
		matches, err := filepath.Glob(filepath.Join(s.dir, pattern))
		if err != nil {
			return fmt.Errorf("purge model cache: %w", err)
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("purge model cache: %w", err)
			}
		}
	}
	s.logger.Info("OCR model cache purged", logging.F("cache_dir", s.dir))
	return nil
}
