package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

const (
	BucketPackImages   = "pack-images"
	BucketStickerFiles = "sticker-files"
)

// MaxImageWidth bounds stored pack images; larger uploads are downscaled.
const MaxImageWidth = 1200

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrUnknownBucket   = errors.New("unknown bucket")
	ErrInvalidName     = errors.New("invalid object name")
	ErrEmptyFile       = errors.New("empty file")
)

var (
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}
	imageMIMEs      = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	archiveExts     = []string{".zip", ".rar", ".7z"}
)

// Object is a stored file and its public URL.
type Object struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Size   int64  `json:"size"`
}

// Local stores bucket objects under a directory on disk, one subdirectory per bucket.
type Local struct {
	root      string
	publicURL string
	maxBytes  int64
}

// NewLocal creates the bucket directories under root. publicURL prefixes object URLs
// and may be empty for host-relative URLs.
func NewLocal(root, publicURL string, maxBytes int64) (*Local, error) {
	for _, b := range []string{BucketPackImages, BucketStickerFiles} {
		if err := os.MkdirAll(filepath.Join(root, b), 0o755); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", b, err)
		}
	}
	return &Local{root: root, publicURL: strings.TrimRight(publicURL, "/"), maxBytes: maxBytes}, nil
}

// Root is the directory served under /storage.
func (l *Local) Root() string {
	return l.root
}

// URL returns the public URL of an object.
func (l *Local) URL(bucket, name string) string {
	return l.publicURL + "/storage/" + bucket + "/" + name
}

// SaveImage validates and normalises a pack image into the pack-images bucket.
// PNG, WebP and GIF inputs are stored as PNG to keep transparency; JPEG stays JPEG.
func (l *Local) SaveImage(ctx context.Context, filename string, r io.Reader) (Object, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !contains(imageExtensions, ext) {
		return Object{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	data, err := l.readLimited(r)
	if err != nil {
		return Object{}, err
	}
	if mime := http.DetectContentType(data); !contains(imageMIMEs, mime) {
		return Object{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Object{}, fmt.Errorf("%w: decode image: %v", ErrUnsupportedType, err)
	}
	if img.Bounds().Dx() > MaxImageWidth {
		img = imaging.Resize(img, MaxImageWidth, 0, imaging.Lanczos)
	}

	format, outExt := imaging.PNG, ".png"
	if ext == ".jpg" || ext == ".jpeg" {
		format, outExt = imaging.JPEG, ".jpg"
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(90)); err != nil {
		return Object{}, fmt.Errorf("encode image: %w", err)
	}
	return l.write(ctx, BucketPackImages, uuid.New().String()+outExt, buf.Bytes())
}

// SaveArchive stores a sticker archive (.zip, .rar, .7z) in the sticker-files bucket.
func (l *Local) SaveArchive(ctx context.Context, filename string, r io.Reader) (Object, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !contains(archiveExts, ext) {
		return Object{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	data, err := l.readLimited(r)
	if err != nil {
		return Object{}, err
	}
	if len(data) == 0 {
		return Object{}, ErrEmptyFile
	}
	return l.write(ctx, BucketStickerFiles, uuid.New().String()+ext, data)
}

// Delete removes an object. Missing objects are ignored.
func (l *Local) Delete(_ context.Context, bucket, name string) error {
	path, err := l.path(bucket, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) write(ctx context.Context, bucket, name string, data []byte) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	path, err := l.path(bucket, name)
	if err != nil {
		return Object{}, err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return Object{}, fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Object{}, fmt.Errorf("write object: %w", err)
	}
	return Object{Bucket: bucket, Name: name, URL: l.URL(bucket, name), Size: int64(len(data))}, nil
}

func (l *Local) path(bucket, name string) (string, error) {
	if bucket != BucketPackImages && bucket != BucketStickerFiles {
		return "", fmt.Errorf("%w: %s", ErrUnknownBucket, bucket)
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(l.root, bucket, name), nil
}

func (l *Local) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, l.maxBytes)
	}
	return data, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
