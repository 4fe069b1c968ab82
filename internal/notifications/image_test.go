package notifications

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidImage builds an image-data payload filled with one colour.
func solidImage(w, h int32, alpha bool, px ...byte) *ImageData {
	channels := int32(3)
	if alpha {
		channels = 4
	}
	stride := w * channels
	data := make([]byte, 0, stride*h)
	for range w * h {
		data = append(data, px[:channels]...)
	}
	return &ImageData{
		Width:         w,
		Height:        h,
		Rowstride:     stride,
		HasAlpha:      alpha,
		BitsPerSample: 8,
		Channels:      channels,
		Data:          data,
	}
}

func TestImageData_Image(t *testing.T) {
	img, err := solidImage(2, 3, false, 10, 20, 30).Image()
	require.NoError(t, err)
	assert.Equal(t, 2, img.Rect.Dx())
	assert.Equal(t, 3, img.Rect.Dy())
	c := img.NRGBAAt(1, 2)
	assert.Equal(t, [4]uint8{10, 20, 30, 0xff}, [4]uint8{c.R, c.G, c.B, c.A})

	img, err = solidImage(1, 1, true, 1, 2, 3, 4).Image()
	require.NoError(t, err)
	c = img.NRGBAAt(0, 0)
	assert.Equal(t, [4]uint8{1, 2, 3, 4}, [4]uint8{c.R, c.G, c.B, c.A})
}

func TestImageData_RowstridePadding(t *testing.T) {
	d := &ImageData{
		Width: 1, Height: 2, Rowstride: 4, BitsPerSample: 8, Channels: 3,
		Data: []byte{1, 2, 3, 0, 4, 5, 6},
	}
	img, err := d.Image()
	require.NoError(t, err)
	c := img.NRGBAAt(0, 1)
	assert.Equal(t, [3]uint8{4, 5, 6}, [3]uint8{c.R, c.G, c.B})
}

func TestImageData_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data *ImageData
	}{
		{name: "zero size", data: &ImageData{BitsPerSample: 8, Channels: 3}},
		{name: "16 bit", data: &ImageData{Width: 1, Height: 1, Rowstride: 6, BitsPerSample: 16, Channels: 3, Data: make([]byte, 6)}},
		{name: "two channels", data: &ImageData{Width: 1, Height: 1, Rowstride: 2, BitsPerSample: 8, Channels: 2, Data: make([]byte, 2)}},
		{name: "alpha without fourth channel", data: &ImageData{Width: 1, Height: 1, Rowstride: 3, HasAlpha: true, BitsPerSample: 8, Channels: 3, Data: make([]byte, 3)}},
		{name: "short rowstride", data: &ImageData{Width: 2, Height: 1, Rowstride: 3, BitsPerSample: 8, Channels: 3, Data: make([]byte, 6)}},
		{name: "truncated data", data: &ImageData{Width: 2, Height: 2, Rowstride: 6, BitsPerSample: 8, Channels: 3, Data: make([]byte, 7)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.data.Image()
			assert.True(t, errors.Is(err, ErrInvalidImage), "got %v", err)
		})
	}
}

func TestImageStore_WritePNG(t *testing.T) {
	s := NewImageStore(filepath.Join(t.TempDir(), "images"), 0)

	img, err := s.prepare(solidImage(4, 4, true, 255, 0, 0, 255))
	require.NoError(t, err)
	path, err := s.write(5, img)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "5"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 4, decoded.Bounds().Dx())
}

func TestImageStore_Downscales(t *testing.T) {
	s := NewImageStore(t.TempDir(), 16)

	img, err := s.prepare(solidImage(64, 32, false, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())

	img, err = s.prepare(solidImage(8, 8, false, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx(), "small images keep their size")
}

func TestImageStore_RemoveOnlyOwnedFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewImageStore(filepath.Join(dir, "images"), 0)

	outside := filepath.Join(dir, "keep.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))
	require.NoError(t, s.Remove(outside))
	assert.FileExists(t, outside)

	img, err := s.prepare(solidImage(1, 1, false, 0, 0, 0))
	require.NoError(t, err)
	path, err := s.write(1, img)
	require.NoError(t, err)
	require.NoError(t, s.Remove(path))
	assert.NoFileExists(t, path)

	// Removing twice is not an error.
	assert.NoError(t, s.Remove(path))
	assert.False(t, s.Owns(s.Dir()))
	assert.False(t, s.Owns("icon-name"))
}
