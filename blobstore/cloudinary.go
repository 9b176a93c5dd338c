package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/uploader"

	"smartsquare-server/config"
)

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(cfg *config.Config) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloud, cfg.CloudinaryKey, cfg.CloudinarySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Store(ctx context.Context, folder, name string, data []byte, contentType string) (string, error) {
	key := objectKey(folder, name)
	// Cloudinary appends the extension itself for images.
	if strings.HasPrefix(contentType, "image/") {
		if i := strings.LastIndex(key, "."); i > strings.LastIndex(key, "/") {
			key = key[:i]
		}
	}

	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     key,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to cloudinary: %w", name, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected %s: %s", name, res.Error.Message)
	}
	return res.SecureURL, nil
}
