package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/config"
)

// ValidateFile checks an uploaded file against the rules of the named
// upload context: size cap plus sniffed MIME type. The reader is rewound
// before returning so the caller can stream it to storage.
func ValidateFile(fileHeader *multipart.FileHeader, file io.ReadSeeker, contextName string) error {
	rules, ok := config.UploadContexts[contextName]
	if !ok {
		return fmt.Errorf("unknown upload context: %s", contextName)
	}

	if rules.MaxSizeMB > 0 {
		maxSizeBytes := rules.MaxSizeMB * 1024 * 1024
		if fileHeader.Size > maxSizeBytes {
			return fmt.Errorf("file size (%d KB) exceeds the %d MB limit", fileHeader.Size/1024, rules.MaxSizeMB)
		}
	}

	buffer := make([]byte, 512)
	_, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for type detection")
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind file")
	}

	mimeType := http.DetectContentType(buffer)

	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return fmt.Errorf("file type not allowed: %s", mimeType)
	}

	return nil
}
