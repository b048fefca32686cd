// Package photo prepares student reference photos and stores them on local disk when no
// remote object store is configured.
package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	// ErrUnsupportedFormat is returned for extensions the encoder cannot round-trip.
	ErrUnsupportedFormat = errors.New("unsupported photo format")
	// ErrUnreadable is returned when the upload is not a decodable image.
	ErrUnreadable = errors.New("photo could not be decoded")
)

// Extension normalises a file name's extension ("Photo.JPG" -> "jpg").
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Normalize applies EXIF orientation, fits the image inside maxSide x maxSide and
// re-encodes it in the format implied by ext. maxSide <= 0 disables resizing.
func Normalize(data []byte, ext string, maxSide int) ([]byte, error) {
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if b := img.Bounds(); maxSide > 0 && (b.Dx() > maxSide || b.Dy() > maxSide) {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), nil
}

// DiskStore writes photos under Dir and serves them from BaseURL + "/photos/".
type DiskStore struct {
	Dir     string
	BaseURL string
}

// NewDiskStore creates the target directory if needed.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("photo dir: %w", err)
	}
	return &DiskStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put stores data as <key>.<ext>, replacing any earlier upload with the same name.
func (d *DiskStore) Put(ctx context.Context, key, ext string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := key + "." + ext
	if filepath.Base(name) != name {
		return "", fmt.Errorf("invalid photo key %q", key)
	}
	if err := os.WriteFile(filepath.Join(d.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	return d.BaseURL + "/photos/" + name, nil
}
