package source

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ErrUnsupported is returned for inputs that are neither a PDF nor an image
// file or directory of images.
var ErrUnsupported = errors.New("unsupported source")

// Source is an ordered sequence of frames that can be rasterized.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	// Ref returns the identifier a viewer config uses for the frame.
	Ref(index int) string
	Close() error
}

// Open picks the source implementation for path.
func Open(path string) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage opens its own document so pages can be rendered from several
// goroutines at once.
func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	return renderPDFPage(f.path, index, dpi)
}

// Ref returns "<path>#<page>", pages counted from 1.
func (f *FitzPDFSource) Ref(index int) string {
	return fmt.Sprintf("%s#%d", f.path, index+1)
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

func renderPDFPage(path string, index int, dpi int) (image.Image, error) {
	workerDoc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()

	if index < 0 || index >= workerDoc.NumPage() {
		return nil, fmt.Errorf("page %d out of range in %s (%d pages)", index+1, path, workerDoc.NumPage())
	}
	return workerDoc.ImageDPI(index, float64(dpi))
}
