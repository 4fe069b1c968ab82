package notifications

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// ErrInvalidImage is returned when an inline image payload cannot be decoded.
var ErrInvalidImage = errors.New("invalid image data")

// ImageData is a raw inline image as sent in the image-data hint
// (signature iiibiiay).
type ImageData struct {
	Width         int32
	Height        int32
	Rowstride     int32
	HasAlpha      bool
	BitsPerSample int32
	Channels      int32
	Data          []byte
}

// Image decodes the raw pixel buffer.
func (d *ImageData) Image() (*image.NRGBA, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidImage, d.Width, d.Height)
	}
	if d.BitsPerSample != 8 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrInvalidImage, d.BitsPerSample)
	}

	channels := int(d.Channels)
	if channels == 0 {
		channels = 3
		if d.HasAlpha {
			channels = 4
		}
	}
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidImage, channels)
	}
	if d.HasAlpha && channels != 4 {
		return nil, fmt.Errorf("%w: alpha with %d channels", ErrInvalidImage, channels)
	}

	w, h, stride := int(d.Width), int(d.Height), int(d.Rowstride)
	if stride < w*channels {
		return nil, fmt.Errorf("%w: rowstride %d too small", ErrInvalidImage, stride)
	}
	if need := stride*(h-1) + w*channels; len(d.Data) < need {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrInvalidImage, len(d.Data), need)
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			src := y*stride + x*channels
			dst := img.PixOffset(x, y)
			img.Pix[dst+0] = d.Data[src+0]
			img.Pix[dst+1] = d.Data[src+1]
			img.Pix[dst+2] = d.Data[src+2]
			if channels == 4 {
				img.Pix[dst+3] = d.Data[src+3]
			} else {
				img.Pix[dst+3] = 0xff
			}
		}
	}
	return img, nil
}

// ImageStore writes decoded inline images, one PNG file per notification id.
type ImageStore struct {
	dir     string
	maxSize uint // 0 = keep original size
}

// NewImageStore returns a store writing into dir. Images larger than maxSize
// in either dimension are downscaled, keeping their aspect ratio.
func NewImageStore(dir string, maxSize int) *ImageStore {
	return &ImageStore{dir: dir, maxSize: uint(max(maxSize, 0))}
}

// Dir returns the image directory.
func (s *ImageStore) Dir() string {
	return s.dir
}

// SetMaxSize changes the downscaling bound.
func (s *ImageStore) SetMaxSize(maxSize int) {
	s.maxSize = uint(max(maxSize, 0))
}

// prepare decodes and downscales d without touching the filesystem.
func (s *ImageStore) prepare(d *ImageData) (image.Image, error) {
	img, err := d.Image()
	if err != nil {
		return nil, err
	}
	if s.maxSize > 0 && (img.Rect.Dx() > int(s.maxSize) || img.Rect.Dy() > int(s.maxSize)) {
		return resize.Thumbnail(s.maxSize, s.maxSize, img, resize.Lanczos3), nil
	}
	return img, nil
}

// Path returns the file used for the image of notification id.
func (s *ImageStore) Path(id uint32) string {
	return filepath.Join(s.dir, strconv.FormatUint(uint64(id), 10))
}

// write stores img as the image of notification id and returns its path.
func (s *ImageStore) write(id uint32, img image.Image) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image directory: %w", err)
	}
	path := s.Path(id)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("save image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return path, nil
}

// Owns reports whether path is a file managed by this store.
func (s *ImageStore) Owns(path string) bool {
	if path == "" || s.dir == "" {
		return false
	}
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !strings.ContainsRune(rel, filepath.Separator)
}

// Remove deletes a managed image file. Paths outside the store are ignored.
func (s *ImageStore) Remove(path string) error {
	if !s.Owns(path) {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
