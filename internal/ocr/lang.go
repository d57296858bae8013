package ocr

import "strings"

var tesseractLanguages = map[string]string{
	"es": "spa",
	"en": "eng",
	"fr": "fra",
	"de": "deu",
	"pt": "por",
	"it": "ita",
	"ca": "cat",
	"nl": "nld",
}

// TesseractLanguage maps a two-letter language code to the Tesseract model
// name. Unknown codes, including Tesseract's own three-letter names and
// "+"-joined lists, are returned lower-cased and unchanged.
func TesseractLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if lang, ok := tesseractLanguages[code]; ok {
		return lang
	}
	return code
}

// modelNames splits a Tesseract language list into model file names.
func modelNames(lang string, osd bool) []string {
	var names []string
	for _, part := range strings.Split(lang, "+") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	if osd {
		names = append(names, "osd")
	}
	return names
}
