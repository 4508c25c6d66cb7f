package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"storefront-service/internal/infra"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoFiles      = errors.New("no files provided")
	ErrTooManyFiles = errors.New("maximum 10 images allowed")
)

const MaxUploadFiles = 10

// UploadFile is one incoming file; Open is called once, from the upload goroutine.
type UploadFile struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type UploadedFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

type UploadService struct {
	blob infra.BlobClientInterface
	log  zerolog.Logger
	now  func() time.Time
}

func NewUploadService(blob infra.BlobClientInterface, log zerolog.Logger) *UploadService {
	return &UploadService{
		blob: blob,
		log:  log.With().Str("component", "upload").Logger(),
		now:  time.Now,
	}
}

// UploadProductImages stores every file under products/{unix_millis}-{name}.
// Either all files are stored or an error is returned.
func (s *UploadService) UploadProductImages(ctx context.Context, files []UploadFile) ([]UploadedFile, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > MaxUploadFiles {
		return nil, ErrTooManyFiles
	}

	out := make([]UploadedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", f.Name, err)
			}
			defer rc.Close()

			pathname := fmt.Sprintf("products/%d-%s", s.now().UnixMilli(), f.Name)
			info, err := s.blob.Put(gctx, pathname, f.ContentType, rc)
			if err != nil {
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}
			out[i] = UploadedFile{URL: info.URL, Filename: f.Name, Size: f.Size, Type: f.ContentType}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Int("files", len(files)).Msg("image upload failed")
		return nil, err
	}

	s.log.Info().Int("files", len(files)).Msg("images uploaded")
	return out, nil
}
