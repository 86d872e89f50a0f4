package cloudinary

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"inventario/internal/config"
	"inventario/internal/domain"
	apperrors "inventario/internal/errors"
)

var errNotConfigured = errors.New("image hosting is not configured")

// uploadAPI is the subset of the Cloudinary upload client in use.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

type Uploader struct {
	api    uploadAPI
	folder string
	logger *zap.Logger
}

// New builds an Uploader from explicit credentials. Missing credentials give
// an Uploader whose every call fails with UploadError, so the service still
// starts and products without images keep working.
func New(cfg config.CloudinaryConfig, logger *zap.Logger) (*Uploader, error) {
	u := &Uploader{folder: cfg.Folder, logger: logger}
	if !cfg.Enabled() {
		logger.Warn("cloudinary credentials missing, image uploads disabled")
		return u, nil
	}

	client, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("creating cloudinary client: %w", err)
	}
	u.api = &client.Upload
	return u, nil
}

func newWithAPI(api uploadAPI, folder string, logger *zap.Logger) *Uploader {
	return &Uploader{api: api, folder: folder, logger: logger}
}

// Upload sends the in-memory image and returns its public HTTPS URL.
func (u *Uploader) Upload(ctx context.Context, image domain.Image) (string, error) {
	if u.api == nil {
		return "", apperrors.NewUploadError(errNotConfigured)
	}

	res, err := u.api.Upload(ctx, bytes.NewReader(image.Data), uploader.UploadParams{
		Folder: u.folder,
	})
	if err != nil {
		return "", apperrors.NewUploadError(err)
	}
	if res == nil {
		return "", apperrors.NewUploadError(errors.New("empty response from provider"))
	}
	if res.Error.Message != "" {
		return "", apperrors.NewUploadError(errors.New(res.Error.Message))
	}
	if res.SecureURL == "" {
		return "", apperrors.NewUploadError(errors.New("provider returned no secure url"))
	}

	u.logger.Debug("image uploaded",
		zap.String("filename", image.Filename),
		zap.Int("bytes", len(image.Data)),
		zap.String("url", res.SecureURL),
	)
	return res.SecureURL, nil
}
