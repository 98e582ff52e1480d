package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore 이미지 저장소 인터페이스
// Save는 공개 접근 경로(상대 경로 또는 URL)를 반환하고,
// Delete는 그 경로를 되받아 파일을 해제한다
type ImageStore interface {
	Save(file *multipart.FileHeader, folder string) (string, error)
	Delete(path string) error
}

// ValidateContentType validates the content type
func ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}

// ValidateFileSize validates the file size
func ValidateFileSize(size int64, maxSize int64) error {
	if size > maxSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", maxSize)
	}
	return nil
}

// LocalStorage 로컬 디스크 저장소
// baseDir 아래에 저장하고 /uploads 정적 경로로 서빙된다
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

func (s *LocalStorage) Save(file *multipart.FileHeader, folder string) (string, error) {
	ext := filepath.Ext(file.Filename)
	key := filepath.Join(folder, uuid.New().String()+ext)

	dst := filepath.Join(s.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return "/uploads/" + filepath.ToSlash(key), nil
}

func (s *LocalStorage) Delete(path string) error {
	key := strings.TrimPrefix(path, "/uploads/")
	if key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("invalid image path: %s", path)
	}
	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
