package util

import (
	"bytes"
	"image"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/nvr-ai/go-iconkit/images"
)

var (
	// ErrSourceNotFound is returned when an input image does not exist.
	ErrSourceNotFound = errors.New("source image not found")
	// ErrDecode is returned when an input exists but is not a decodable image.
	ErrDecode = errors.New("image decode failed")
)

// ImageFile represents an image file read from disk.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
}

// LoadImageFile reads the raw bytes of an image file.
//
// Arguments:
// - path: Path to the image file.
//
// Returns:
// - ImageFile with the file contents.
// - error wrapping ErrSourceNotFound if the file does not exist.
func LoadImageFile(path string) (ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ImageFile{}, errors.Wrap(ErrSourceNotFound, path)
		}
		return ImageFile{}, errors.Wrapf(err, "read %s", path)
	}
	return ImageFile{Path: path, Data: data}, nil
}

// Decode decodes the file contents into an image.
//
// Returns:
// - The decoded image and its format.
// - error wrapping ErrDecode if the bytes are not a supported image.
func (f ImageFile) Decode() (image.Image, images.ImageFormat, error) {
	img, format, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, "", errors.Wrapf(ErrDecode, "%s: %v", f.Path, err)
	}
	return img, images.ImageFormat(format), nil
}

// ReadImage loads and decodes the image at path.
func ReadImage(path string) (image.Image, images.ImageFormat, error) {
	f, err := LoadImageFile(path)
	if err != nil {
		return nil, "", err
	}
	return f.Decode()
}

// WriteImage encodes img as PNG at path, creating parent directories on
// demand. The image is written to a temporary file in the same directory and
// renamed into place, so path never holds a partial file.
func WriteImage(path string, img image.Image) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "rename into %s", path)
	}
	return nil
}
