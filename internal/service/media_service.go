package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/vibely/vibely-backend/internal/common"
	"github.com/vibely/vibely-backend/internal/domain"
	pkglogger "github.com/vibely/vibely-backend/pkg/logger"
	"github.com/vibely/vibely-backend/pkg/storage"
)

const (
	maxMediaPerMessage = 10
	maxImageWidth      = 1280
	maxMediaSize       = 50 * 1024 * 1024 // 50MB
)

// MediaService resolves raw uploads into durable attachment references.
// Runs before the message core ever sees an attachment: the core stores
// only the {kind, url} pairs returned here.
type MediaService struct {
	s3 *storage.S3Client
}

// NewMediaService creates a new MediaService
func NewMediaService(s3Client *storage.S3Client) *MediaService {
	return &MediaService{s3: s3Client}
}

// ResolveAttachments uploads each file and returns ordered attachment refs.
// Images wider than maxImageWidth are downscaled and re-encoded; videos are
// stored as-is. Anything that is neither image nor video is rejected.
func (s *MediaService) ResolveAttachments(ctx context.Context, files []*multipart.FileHeader) ([]domain.Attachment, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.s3 == nil {
		return nil, common.ErrMediaUnavailable
	}
	if len(files) > maxMediaPerMessage {
		return nil, common.ErrTooManyMedia
	}

	attachments := make([]domain.Attachment, 0, len(files))
	for _, file := range files {
		att, err := s.resolveOne(ctx, file)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}
	return attachments, nil
}

// RemoveAttachments deletes the stored objects behind the given attachments.
// Best effort: a failed delete is logged, never surfaced, so an unsend
// succeeds even when storage cleanup does not.
func (s *MediaService) RemoveAttachments(ctx context.Context, attachments []domain.Attachment) {
	if s.s3 == nil {
		return
	}
	for _, att := range attachments {
		key := s.s3.KeyFromURL(att.URL)
		if key == "" {
			continue
		}
		if err := s.s3.Delete(ctx, key); err != nil {
			pkglogger.Get().Warn().
				Err(err).
				Str("key", key).
				Msg("attachment cleanup failed")
		}
	}
}

func (s *MediaService) resolveOne(ctx context.Context, file *multipart.FileHeader) (domain.Attachment, error) {
	if file.Size > maxMediaSize {
		return domain.Attachment{}, common.ErrUnsupportedMedia
	}

	src, err := file.Open()
	if err != nil {
		return domain.Attachment{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return domain.Attachment{}, err
	}

	contentType := http.DetectContentType(data)
	ext := strings.ToLower(path.Ext(file.Filename))

	switch {
	case strings.HasPrefix(contentType, "image/"):
		return s.uploadImage(ctx, file.Filename, data, contentType, ext)
	case strings.HasPrefix(contentType, "video/"):
		return s.uploadVideo(ctx, file.Filename, data, contentType, ext)
	default:
		return domain.Attachment{}, common.ErrUnsupportedMedia
	}
}

func (s *MediaService) uploadImage(ctx context.Context, filename string, data []byte, contentType, ext string) (domain.Attachment, error) {
	reader := io.Reader(bytes.NewReader(data))
	size := int64(len(data))

	// Downscale raster images; GIF/SVG pass through untouched.
	if ext != ".svg" && ext != ".gif" {
		if img, format, decErr := image.Decode(bytes.NewReader(data)); decErr == nil {
			if img.Bounds().Dx() > maxImageWidth {
				img = resizeImage(img, maxImageWidth)
			}

			var buf bytes.Buffer
			switch format {
			case "png":
				if err := png.Encode(&buf, img); err == nil {
					reader = &buf
					size = int64(buf.Len())
					contentType = "image/png"
					ext = ".png"
				}
			default:
				if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err == nil {
					reader = &buf
					size = int64(buf.Len())
					contentType = "image/jpeg"
					ext = ".jpg"
				}
			}
		}
	}

	key := storage.GenerateKey("messages", sanitizeFilename(filename, ext))
	result, err := s.s3.Upload(ctx, key, reader, contentType, size)
	if err != nil {
		return domain.Attachment{}, err
	}

	pkglogger.Get().Info().
		Str("key", result.Key).
		Int64("size", size).
		Msg("message image uploaded")

	return domain.Attachment{Kind: domain.AttachmentImage, URL: attachmentURL(result)}, nil
}

func (s *MediaService) uploadVideo(ctx context.Context, filename string, data []byte, contentType, ext string) (domain.Attachment, error) {
	key := storage.GenerateKey("messages", sanitizeFilename(filename, ext))
	result, err := s.s3.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		return domain.Attachment{}, err
	}

	pkglogger.Get().Info().
		Str("key", result.Key).
		Int64("size", int64(len(data))).
		Str("content_type", contentType).
		Msg("message video uploaded")

	return domain.Attachment{Kind: domain.AttachmentVideo, URL: attachmentURL(result)}, nil
}

func attachmentURL(result *storage.UploadResult) string {
	if result.CDNURL != "" {
		return result.CDNURL
	}
	return result.URL
}

func sanitizeFilename(original, ext string) string {
	base := strings.TrimSuffix(path.Base(original), path.Ext(original))
	var result strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	s := result.String()
	if s == "" {
		s = "file"
	}
	return s + ext
}

// resizeImage resizes an image to the given max width, preserving aspect ratio
func resizeImage(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	origWidth := bounds.Dx()
	origHeight := bounds.Dy()

	if origWidth <= maxWidth {
		return img
	}

	newWidth := maxWidth
	newHeight := origHeight * newWidth / origWidth

	// Simple nearest-neighbor resize (good enough for chat media)
	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	for y := 0; y < newHeight; y++ {
		for x := 0; x < newWidth; x++ {
			srcX := x * origWidth / newWidth
			srcY := y * origHeight / newHeight
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}

	return dst
}
