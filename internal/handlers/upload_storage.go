package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxImageSize = 5 << 20

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// ImageStore keeps product images under <Root>/uploads/products; the stored
// path is relative to Root so it can be served from the public directory.
type ImageStore struct {
	Root string
	log  *zap.Logger
}

func NewImageStore(root string, log *zap.Logger) *ImageStore {
	return &ImageStore{Root: root, log: log.Named("upload")}
}

func (s *ImageStore) Save(file *multipart.FileHeader) (string, error) {
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		return "", fmt.Errorf("image file extension is required")
	}
	if _, ok := allowedImageExtensions[extension]; !ok {
		return "", fmt.Errorf("unsupported image type: %s", extension)
	}
	if file.Size > maxImageSize {
		return "", fmt.Errorf("image file too large (max 5MB)")
	}

	filename := primitive.NewObjectID().Hex() + extension
	dir := filepath.Join(s.Root, "uploads", "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.log.Error("create upload directory failed", zap.String("dir", dir), zap.Error(err))
		return "", err
	}

	fullPath := filepath.Join(dir, filename)
	out, err := os.Create(fullPath)
	if err != nil {
		s.log.Error("create image file failed", zap.String("path", fullPath), zap.Error(err))
		return "", err
	}
	defer out.Close()

	in, err := file.Open()
	if err != nil {
		s.log.Error("open upload failed", zap.String("filename", file.Filename), zap.Error(err))
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		s.log.Error("save image failed", zap.String("path", fullPath), zap.Error(err))
		return "", err
	}

	s.log.Info("image saved", zap.String("path", fullPath))
	return path.Join("uploads", "products", filename), nil
}

// Delete removes a previously saved upload. Paths outside uploads/ or
// outside Root are refused; a missing file is not an error.
func (s *ImageStore) Delete(relPath string) error {
	trimmed := strings.TrimSpace(relPath)
	if trimmed == "" {
		return nil
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, "/"))
	cleanRel = strings.TrimPrefix(cleanRel, "/")

	if !strings.HasPrefix(cleanRel, "uploads/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", relPath)
	}

	cleanBase := filepath.Clean(s.Root)
	cleanTarget := filepath.Clean(filepath.Join(cleanBase, filepath.FromSlash(cleanRel)))
	if cleanTarget != cleanBase && !strings.HasPrefix(cleanTarget, cleanBase+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside public root: %s", relPath)
	}

	if err := os.Remove(cleanTarget); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}

// discard deletes an image that will not be referenced, logging failures.
func (s *ImageStore) discard(relPath string) {
	if err := s.Delete(relPath); err != nil {
		s.log.Warn("delete image failed", zap.String("path", relPath), zap.Error(err))
	}
}
