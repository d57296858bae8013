package models

// ExtractionMethod names the path used to obtain a page's text.
type ExtractionMethod string

const (
	// MethodOCR means the page was rasterized and recognized.
	MethodOCR ExtractionMethod = "ocr"
	// MethodText means the embedded text layer was read directly.
	MethodText ExtractionMethod = "text"
)

// ImageInfo describes one raster image embedded in a page.
// Err is set when the image's metadata could not be read; such images are
// counted but never influence classification.
type ImageInfo struct {
	Width  int
	Height int
	Err    error
}

// PixelArea returns width*height in device pixels.
func (i ImageInfo) PixelArea() int {
	return i.Width * i.Height
}

// PageContent is the raw material a page is classified from.
type PageContent struct {
	Num    int
	Images []ImageInfo
	Text   string
}

// PageInfo is the classification of one page. It is derived data and is
// recomputed on every classification pass.
type PageInfo struct {
	Num        int  `json:"num" yaml:"num"`
	NeedsOCR   bool `json:"needs_ocr" yaml:"needs_ocr"`
	ImageCount int  `json:"image_count" yaml:"image_count"`
	TextChars  int  `json:"text_chars" yaml:"text_chars"`
}

// Method returns the extraction path selected for the page.
func (p PageInfo) Method() ExtractionMethod {
	if p.NeedsOCR {
		return MethodOCR
	}
	return MethodText
}
