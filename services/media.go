package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/omenmarkets/omen_api/dto"
	"github.com/omenmarkets/omen_api/model"
	"github.com/omenmarkets/omen_api/shared"
)

// MediaService handles event banner uploads into object storage.
type MediaService struct {
	appContext.DefaultService

	sqlSvc   *PostgresService
	minioSvc *MinIOService
}

const MEDIA_SVC = "media_svc"

const maxBannerSize = 5 * 1024 * 1024

var allowedBannerTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

func (svc MediaService) Id() string {
	return MEDIA_SVC
}

func (svc *MediaService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *MediaService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

func (svc *MediaService) UploadEventBanner(eventID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	if file.Size > maxBannerSize {
		return nil, shared.NewBadRequestError(nil, "Banner must be 5MB or smaller")
	}

	contentType := file.Header.Get("Content-Type")
	ext, ok := allowedBannerTypes[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(file.Filename))
		if ext != ".png" && ext != ".jpg" && ext != ".jpeg" && ext != ".webp" {
			return nil, shared.NewBadRequestError(nil, "Banner must be a PNG, JPEG or WebP image")
		}
	}

	src, err := file.Open()
	if err != nil {
		return nil, shared.NewBadRequestError(err, "Failed to read upload")
	}
	defer src.Close()

	id, _ := uuid.NewV7()
	objectName := fmt.Sprintf("banners/%s/%s%s", eventID, id.String(), ext)

	if _, err := svc.minioSvc.UploadFile(objectName, src, file.Size, contentType); err != nil {
		log.WithError(err).WithField("event_id", eventID).Error("Banner upload failed")
		return nil, shared.NewInternalError(err)
	}

	url, err := svc.minioSvc.GetFileURL(objectName, 7*24*time.Hour)
	if err != nil {
		return nil, shared.NewInternalError(err)
	}

	asset := &model.MediaAsset{
		EventID:     eventID,
		FileName:    file.Filename,
		ObjectName:  objectName,
		ContentType: contentType,
		FileSize:    file.Size,
		URL:         url,
	}
	if err := svc.sqlSvc.CreateMediaAsset(asset); err != nil {
		return nil, err
	}

	return &dto.MediaUploadResponse{
		AssetID:     asset.ID,
		FileName:    asset.FileName,
		ContentType: asset.ContentType,
		FileSize:    asset.FileSize,
		URL:         asset.URL,
		UploadedAt:  asset.CreatedAt,
	}, nil
}

func (svc *MediaService) DeleteMediaAsset(assetID string) error {
	asset, err := svc.sqlSvc.GetMediaAsset(assetID)
	if err != nil {
		return err
	}

	if err := svc.minioSvc.DeleteFile(asset.ObjectName); err != nil {
		log.WithError(err).WithField("asset_id", assetID).Warn("Failed to delete object from storage")
	}

	return svc.sqlSvc.DeleteMediaAsset(assetID)
}
