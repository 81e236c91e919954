package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Uploader is the image-storage boundary used by the profile and upload
// handlers. CloudinaryService implements it; tests use a fake.
type Uploader interface {
	// UploadImage uploads an image source (a URL or base64 data URI, as
	// sent by the client in the update-profile body) and returns its
	// delivery URL.
	UploadImage(ctx context.Context, source, folder string) (string, error)
	// UploadFile uploads multipart file content and returns its delivery URL.
	UploadFile(ctx context.Context, file multipart.File, folder, publicID string) (string, error)
	// Destroy removes a previously uploaded asset by public ID.
	Destroy(ctx context.Context, publicID string) error
}

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld: cld,
	}, nil
}

func (s *CloudinaryService) UploadImage(ctx context.Context, source, folder string) (string, error) {
	uploadResult, err := s.cld.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return uploadResult.SecureURL, nil
}

func (s *CloudinaryService) UploadFile(ctx context.Context, file multipart.File, folder, publicID string) (string, error) {
	// Read file content
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	uploadResult, err := s.cld.Upload.Upload(ctx, fileBytes, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		ResourceType: "auto", // Automatically detect image, video, or raw
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return uploadResult.SecureURL, nil
}

func (s *CloudinaryService) Destroy(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy Cloudinary asset: %w", err)
	}
	return nil
}

// PublicIDFromURL derives the asset public ID from a delivery URL: the last
// path segment without its extension.
func PublicIDFromURL(url string) string {
	parts := strings.Split(url, "/")
	last := parts[len(parts)-1]
	return strings.SplitN(last, ".", 2)[0]
}
