package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/kendall-kelly/gig-marketplace-api/utils"
)

// ImageService stores gig images and hands out URLs to read them
type ImageService interface {
	// UploadImage stores the file under the gig's prefix and returns its storage key
	UploadImage(ctx context.Context, gigID uint, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL generates a URL for accessing an uploaded image
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

// S3ImageService implements ImageService on top of object storage
type S3ImageService struct {
	store S3Interface
}

func NewImageService(store S3Interface) *S3ImageService {
	return &S3ImageService{store: store}
}

// ImageKey builds the storage key for a new gig image: gigs/<id>/<uuid><ext>
func ImageKey(gigID uint, filename string) string {
	return fmt.Sprintf("gigs/%d/%s%s", gigID, uuid.NewString(), utils.ImageExtension(filename))
}

func (s *S3ImageService) UploadImage(ctx context.Context, gigID uint, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}
	contentType, _ := utils.ImageContentType(fileHeader.Filename)

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := ImageKey(gigID, fileHeader.Filename)
	if err := s.store.UploadFile(ctx, key, contentType, content); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return key, nil
}

func (s *S3ImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.store.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}

func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.store.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
