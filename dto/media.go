package dto

import "time"

type MediaUploadResponse struct {
	AssetID     string    `json:"asset_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
