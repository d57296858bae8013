package ocr

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"fjacquet/pdf-txt/internal/pdferror"
)

// corruptionMarkers are error texts produced by truncated or damaged model
// files. Generic engine init failures ("failed loading language", "failed to
// initialize TessBaseAPI") are excluded: a wrong language code or prefix
// produces them too, and purging cannot fix those.
var corruptionMarkers = []string{
	"unexpected end of data",
	"tar file",
	"bad crc",
	"unexpected eof",
	"checksum mismatch",
}

// IsCorruptedCache reports whether err belongs to the class of errors a purge
// of the model cache can fix.
func IsCorruptedCache(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pdferror.ErrCorruptedModelCache) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range corruptionMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// ValidateCacheDir checks that a model cache path can be handed to native
// libraries that do not cope with non-ASCII paths.
func ValidateCacheDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return &pdferror.ValidationError{Field: "ocr.cache_dir", Reason: "must not be empty"}
	}
	for i, r := range dir {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return &pdferror.ValidationError{
				Field:  "ocr.cache_dir",
				Reason: fmt.Sprintf("%q contains non-printable or non-ASCII character %q at byte %d; set ocr.cache_dir (OCR_CACHE_DIR) to an ASCII path", dir, r, i),
			}
		}
	}
	return nil
}
