package miniview

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type sourceKind int

const (
	sourceByPath sourceKind = iota + 1
	sourceByStream
)

// Source is the origin of the image shown by a view. A Source is either a
// filesystem path or a stream of encoded image bytes, never both; the only
// way to build one is through the constructors below.
type Source struct {
	kind   sourceKind
	path   string
	reader io.Reader
}

// FromPathSource points at an image file, e.g. /home/me/image.png.
func FromPathSource(path string) Source {
	return Source{kind: sourceByPath, path: path}
}

// FromStdin reads an encoded image piped to the standard input.
func FromStdin() Source {
	return Source{kind: sourceByStream}
}

// FromReader reads an encoded image from r.
func FromReader(r io.Reader) Source {
	return Source{kind: sourceByStream, reader: r}
}

// Path returns the image path and whether the source is path based.
func (s Source) Path() (string, bool) {
	return s.path, s.kind == sourceByPath
}

func (s Source) String() string {
	switch s.kind {
	case sourceByPath:
		return fmt.Sprintf("path(%s)", s.path)
	case sourceByStream:
		if s.reader == nil {
			return "stdin"
		}
		return "stream"
	default:
		return "none"
	}
}

// resolve loads and decodes the image. It blocks until a stream source has
// been read to completion.
func (s Source) resolve() (*image.RGBA, error) {
	switch s.kind {
	case sourceByPath:
		img, err := decodeFile(s.path)
		if err != nil {
			return nil, &ImportError{Kind: PathNotFound, Path: s.path, Err: err}
		}
		return toRGBA(img), nil
	case sourceByStream:
		r := s.reader
		if r == nil {
			r = os.Stdin
		}
		return decodeStream(r)
	default:
		return nil, ErrInputModeUndetermined
	}
}

func decodeFile(path string) (image.Image, error) {
	if path == "" {
		return nil, ErrEmptyInputPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func decodeStream(r io.Reader) (*image.RGBA, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, &ImportError{Kind: StdinUnableToRead, Err: err}
	}
	if len(buf) == 0 {
		return nil, &ImportError{Kind: StreamEmpty}
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, &ImportError{Kind: UnrecognizedFormat, Err: err}
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// ReadPath reads a path to an image from r, e.g. the standard input. The
// whole stream is consumed and surrounding whitespace is trimmed.
func ReadPath(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &ImportError{Kind: StdinUnableToRead, Err: err}
	}
	path := strings.TrimSpace(string(data))
	if path == "" {
		return "", &ImportError{Kind: StdinPathEmpty}
	}
	return path, nil
}
