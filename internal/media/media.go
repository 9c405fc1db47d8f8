package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const (
	MaxImageSize = 5 * 1024 * 1024
	MaxPDFSize   = 10 * 1024 * 1024
)

var (
	ErrPayloadTooLarge = errors.New("file is too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Kind — класс вложения, определяет лимит размера и папку хранения.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

// Validate классифицирует файл по расширению и проверяет размер.
// Вызывается до любого обращения к хранилищу.
func Validate(filename string, size int64) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExts[ext]:
		if size > MaxImageSize {
			return "", ErrPayloadTooLarge
		}
		return KindImage, nil
	case ext == ".pdf":
		if size > MaxPDFSize {
			return "", ErrPayloadTooLarge
		}
		return KindPDF, nil
	default:
		return "", ErrUnsupportedType
	}
}

// Storage сохраняет вложение и возвращает публичный URL.
type Storage interface {
	Save(ctx context.Context, filename string, kind Kind, r io.Reader) (string, error)
}

// CloudinaryStorage кладёт файлы в Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudinaryURL string) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

func (s *CloudinaryStorage) Save(ctx context.Context, filename string, kind Kind, r io.Reader) (string, error) {
	folder := "chat-images"
	if kind == KindPDF {
		folder = "chat-files"
	}
	publicID := uuid.NewString() + filepath.Ext(filename)
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}

// LocalStorage кладёт файлы на диск и раздаёт их по baseURL/uploads/.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media dir: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) Save(ctx context.Context, filename string, kind Kind, r io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("media create: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("media write: %w", err)
	}
	return s.baseURL + "/uploads/" + name, nil
}
