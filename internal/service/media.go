package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/kitkuhar/kitkuhar/backend/internal/logging"
	"github.com/kitkuhar/kitkuhar/backend/internal/metrics"
	"github.com/kitkuhar/kitkuhar/backend/internal/types"
)

const (
	MaxFileSize    = 10 << 20
	MaxBatchFiles  = 5
	MaxImageWidth  = 1920
	MaxImageHeight = 1080
	JPEGQuality    = 85
	MaxImagePixels = 50_000_000

	MediaImage = "image"
	MediaVideo = "video"
)

var (
	imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	videoExtensions = map[string]string{".mp4": "video/mp4", ".webm": "video/webm", ".ogg": "video/ogg", ".mov": "video/quicktime"}
)

// Upload is one file received from a client
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// MediaService validates, normalises and stores recipe step media
type MediaService struct {
	store Store
}

func NewMediaService(store Store) *MediaService {
	return &MediaService{store: store}
}

// Classify returns image or video for an allowed extension
func Classify(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if imageExtensions[ext] {
		return MediaImage, nil
	}
	if _, ok := videoExtensions[ext]; ok {
		return MediaVideo, nil
	}
	return "", invalidInput("file type %q is not allowed", ext)
}

// Validate checks a file's name, type and size without reading it
func (s *MediaService) Validate(u Upload) (string, error) {
	if strings.TrimSpace(u.Filename) == "" {
		return "", invalidInput("file name is required")
	}
	kind, err := Classify(u.Filename)
	if err != nil {
		return "", err
	}
	if u.Size > MaxFileSize {
		return "", invalidInput("file %s exceeds the %d MB limit", u.Filename, MaxFileSize>>20)
	}
	return kind, nil
}

// Save validates and stores a single file
func (s *MediaService) Save(ctx context.Context, u Upload) (*types.MediaFile, error) {
	kind, err := s.Validate(u)
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, u, kind)
}

// SaveBatch stores up to MaxBatchFiles files. Entries without a name are
// skipped. Every file is validated before the first write, and a failed
// write removes the files already stored by this batch.
func (s *MediaService) SaveBatch(ctx context.Context, uploads []Upload) ([]types.MediaFile, error) {
	if len(uploads) > MaxBatchFiles {
		return nil, invalidInput("at most %d files per upload", MaxBatchFiles)
	}

	kinds := make([]string, 0, len(uploads))
	accepted := make([]Upload, 0, len(uploads))
	for _, u := range uploads {
		if strings.TrimSpace(u.Filename) == "" {
			continue
		}
		kind, err := s.Validate(u)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
		accepted = append(accepted, u)
	}
	if len(accepted) == 0 {
		return nil, invalidInput("no files provided")
	}

	saved := make([]types.MediaFile, 0, len(accepted))
	for i, u := range accepted {
		file, err := s.persist(ctx, u, kinds[i])
		if err != nil {
			s.rollback(ctx, saved)
			return nil, err
		}
		saved = append(saved, *file)
	}
	return saved, nil
}

// Delete removes a stored file by its generated name
func (s *MediaService) Delete(ctx context.Context, filename string) error {
	if filename == "" || filename != filepath.Base(filename) || strings.ContainsAny(filename, `/\`) || strings.HasPrefix(filename, ".") {
		return invalidInput("invalid file name")
	}
	if err := s.store.Delete(ctx, filename); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Str("filename", filename).Msg("media file deleted")
	return nil
}

func (s *MediaService) persist(ctx context.Context, u Upload, kind string) (*types.MediaFile, error) {
	rc, err := u.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", u.Filename, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u.Filename, err)
	}
	if len(data) > MaxFileSize {
		return nil, invalidInput("file %s exceeds the %d MB limit", u.Filename, MaxFileSize>>20)
	}

	var name, contentType string
	if kind == MediaImage {
		data, err = NormalizeImage(data)
		if errors.Is(err, ErrInvalidInput) {
			return nil, err
		}
		if err != nil {
			return nil, invalidInput("file %s is not a readable image", u.Filename)
		}
		name, contentType = uuid.NewString()+".jpg", "image/jpeg"
	} else {
		ext := strings.ToLower(filepath.Ext(u.Filename))
		name, contentType = uuid.NewString()+ext, videoExtensions[ext]
	}

	url, err := s.store.Put(ctx, name, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return nil, err
	}

	metrics.MediaFilesStored.WithLabelValues(kind).Inc()
	metrics.MediaBytesStored.Add(float64(len(data)))
	logging.Ctx(ctx).Info().Str("filename", name).Str("original", u.Filename).Str("type", kind).Int("size", len(data)).Msg("media file stored")

	return &types.MediaFile{
		Filename:         name,
		OriginalFilename: u.Filename,
		Type:             kind,
		URL:              url,
		Size:             int64(len(data)),
	}, nil
}

func (s *MediaService) rollback(ctx context.Context, saved []types.MediaFile) {
	if len(saved) == 0 {
		return
	}
	metrics.MediaRollbacks.Inc()
	for _, f := range saved {
		if err := s.store.Delete(ctx, f.Filename); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("filename", f.Filename).Msg("failed to roll back media file")
		}
	}
}

// NormalizeImage flattens transparency onto white, fits the image inside
// 1920x1080 without upscaling and re-encodes it as JPEG. Images above
// MaxImagePixels are rejected from their header before any pixel is decoded.
func NormalizeImage(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, invalidInput("image is too large: %dx%d exceeds %d megapixels", cfg.Width, cfg.Height, MaxImagePixels/1_000_000)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	flat := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flat = imaging.Overlay(flat, src, image.Pt(0, 0), 1.0)

	fitted := imaging.Fit(flat, MaxImageWidth, MaxImageHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
