package photostorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedMedia is returned when an upload is not an image.
var ErrUnsupportedMedia = errors.New("upload is not an image")

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

// Store persists uploaded photo files.
type Store interface {
	// Save writes the upload for photo id, replacing any previous file.
	Save(ctx context.Context, id string, r io.Reader) (int64, error)
	// Remove deletes the file for photo id; a missing file is not an error.
	Remove(ctx context.Context, id string) error
	// URL returns the public address of the file for photo id.
	URL(id string) string
}

// FileStore keeps photos as <dir>/<id>.jpg and serves them under
// <publicURL>/img/photos/.
type FileStore struct {
	dir       string
	publicURL string
	logger    *slog.Logger
}

// NewFileStore creates dir if needed.
func NewFileStore(dir, publicURL string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photos dir: %w", err)
	}
	return &FileStore{
		dir:       dir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger,
	}, nil
}

// Dir is the directory photos are written to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+".jpg")
}

func (s *FileStore) URL(id string) string {
	return s.publicURL + "/img/photos/" + id + ".jpg"
}

// Save streams r to a temp file in dir and renames it into place once the
// copy completes, so readers never observe a partial photo.
func (s *FileStore) Save(ctx context.Context, id string, r io.Reader) (int64, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read upload: %w", err)
	}
	header = header[:n]

	mtype := mimetype.Detect(header)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
	}

	tmp, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: io.MultiReader(bytes.NewReader(header), r)})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write photo: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return 0, fmt.Errorf("failed to move photo into place: %w", err)
	}

	s.logger.InfoContext(ctx, "Stored photo",
		slog.String("photo_id", id),
		slog.String("mime", mtype.String()),
		slog.Int64("bytes", written),
	)
	return written, nil
}

func (s *FileStore) Remove(ctx context.Context, id string) error {
	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove photo: %w", err)
	}
	return nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
