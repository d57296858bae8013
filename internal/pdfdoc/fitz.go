package pdfdoc

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"fjacquet/pdf-txt/internal/models"
	"fjacquet/pdf-txt/internal/pdferror"
)

// FitzOpener opens documents with MuPDF (go-fitz) for text and rendering,
// and reads image metadata from the object graph with pdfcpu.
type FitzOpener struct{}

// NewFitzOpener creates a new FitzOpener.
func NewFitzOpener() *FitzOpener {
	return &FitzOpener{}
}

// Open opens the PDF at path.
func (o *FitzOpener) Open(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, &pdferror.DocumentError{Path: path, Op: "open", Err: err}
	}
	return &fitzDocument{path: path, doc: doc}, nil
}

type fitzDocument struct {
	path string
	doc  *fitz.Document

	// pdfcpu context, parsed on first PageImages call.
	once   sync.Once
	ctx    *model.Context
	ctxErr error
}

func (d *fitzDocument) Path() string { return d.path }

func (d *fitzDocument) NumPages() int { return d.doc.NumPage() }

func (d *fitzDocument) PageText(page int) (string, error) {
	return d.doc.Text(page)
}

func (d *fitzDocument) RenderPage(page int, dpi float64) (image.Image, error) {
	img, err := d.doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}

func (d *fitzDocument) PageImages(page int) ([]models.ImageInfo, error) {
	d.once.Do(func() {
		d.ctx, d.ctxErr = readContext(d.path)
	})
	if d.ctxErr != nil {
		return nil, d.ctxErr
	}
	if page < 0 || page >= d.ctx.PageCount {
		return nil, fmt.Errorf("page %d out of range [0, %d)", page, d.ctx.PageCount)
	}
	return pageImages(d.ctx, page+1), nil
}

func readContext(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.Optimize == nil {
		return nil, fmt.Errorf("pdfcpu read: no optimization context")
	}
	return ctx, nil
}

// pageImages lists the image XObjects of a 1-based page.
func pageImages(ctx *model.Context, pageNr int) []models.ImageInfo {
	objNrs := pdfcpu.ImageObjNrs(ctx, pageNr)
	images := make([]models.ImageInfo, 0, len(objNrs))
	for _, objNr := range objNrs {
		w, h, err := imageSize(ctx, objNr)
		images = append(images, models.ImageInfo{Width: w, Height: h, Err: err})
	}
	return images
}

func imageSize(ctx *model.Context, objNr int) (int, int, error) {
	entry, ok := ctx.Table[objNr]
	if !ok || entry == nil || entry.Free {
		return 0, 0, fmt.Errorf("image object %d not found", objNr)
	}
	sd, ok := entry.Object.(types.StreamDict)
	if !ok {
		return 0, 0, fmt.Errorf("image object %d is not a stream", objNr)
	}

	w, err := dimension(sd.Dict, "Width", ctx.Dereference)
	if err != nil {
		return 0, 0, err
	}
	h, err := dimension(sd.Dict, "Height", ctx.Dereference)
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// dimension reads a non-negative numeric entry of an image dictionary,
// following indirect references through deref.
func dimension(dict types.Dict, key string, deref func(types.Object) (types.Object, error)) (int, error) {
	obj, found := dict.Find(key)
	if !found {
		return 0, fmt.Errorf("missing /%s", key)
	}
	obj, err := deref(obj)
	if err != nil {
		return 0, fmt.Errorf("resolve /%s: %w", key, err)
	}
	var v int
	switch n := obj.(type) {
	case types.Integer:
		v = int(n)
	case types.Float:
		v = int(n)
	default:
		return 0, fmt.Errorf("/%s is %T, not a number", key, obj)
	}
	if v < 0 {
		return 0, fmt.Errorf("/%s is negative: %d", key, v)
	}
	return v, nil
}
