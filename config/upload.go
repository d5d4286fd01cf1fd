package config

type UploadConfig struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
	PathPrefix       string
}

// UploadContexts maps a named upload slot to its validation rules and the
// storage prefix media files land under. One context per order stage that
// accepts proof photos, plus one for issue attachments.
var UploadContexts = map[string]UploadConfig{
	"arranging_media": {
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp", "image/jpg", "application/pdf"},
		MaxSizeMB:        20,
		PathPrefix:       "orders/arranging",
	},
	"packaging_media": {
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp", "image/jpg", "application/pdf"},
		MaxSizeMB:        20,
		PathPrefix:       "orders/packaging",
	},
	"transit_media": {
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp", "image/jpg", "application/pdf"},
		MaxSizeMB:        20,
		PathPrefix:       "orders/transit",
	},
	"issue_media": {
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/webp", "image/jpg"},
		MaxSizeMB:        10,
		PathPrefix:       "issues",
	},
}
