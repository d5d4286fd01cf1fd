package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/config"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/lifecycle"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/filestorage"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

// Upload context names, keyed to config.UploadContexts.
const (
	arrangingMediaContext = "arranging_media"
	packagingMediaContext = "packaging_media"
	transitMediaContext   = "transit_media"
	issueMediaContext     = "issue_media"
)

// uploadContextFor maps a requested status to the upload slot its proof
// media belongs to. Statuses without a media column return "".
func uploadContextFor(raw string) string {
	status, err := lifecycle.Parse(raw)
	if err != nil {
		return ""
	}
	switch {
	case status.IsArrangingStage():
		return arrangingMediaContext
	case status == lifecycle.StatusUnderPackaging, status == lifecycle.StatusPackagingCompleted:
		return packagingMediaContext
	case status == lifecycle.StatusInTransit, status == lifecycle.StatusConfirmOrderReceived:
		return transitMediaContext
	default:
		return ""
	}
}

// collectMedia validates and stores every file under the multipart
// 'files' key, returning the stored paths. A plain JSON request yields
// nil; files on an endpoint without an upload slot are rejected before
// anything touches the disk.
func collectMedia(ctx echo.Context, storage filestorage.FileStorageInterface, uploadContext string) ([]string, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "malformed multipart form")
	}

	files := form.File["files"]
	if len(files) == 0 {
		return nil, nil
	}
	if uploadContext == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "file uploads are not accepted on this endpoint")
	}
	rules := config.UploadContexts[uploadContext]

	media := make([]string, 0, len(files))
	fail := func(err error) ([]string, error) {
		for _, stored := range media {
			storage.Delete(stored)
		}
		return nil, err
	}
	for _, fileHeader := range files {
		src, err := fileHeader.Open()
		if err != nil {
			return fail(err)
		}
		if err := utils.ValidateFile(fileHeader, src, uploadContext); err != nil {
			src.Close()
			return fail(echo.NewHTTPError(http.StatusBadRequest, err.Error()))
		}
		path, err := storage.Save(src, fileHeader.Filename, rules.PathPrefix)
		src.Close()
		if err != nil {
			return fail(err)
		}
		media = append(media, path)
	}
	return media, nil
}

// discardMedia removes files stored for a request whose transition was
// rejected, so failed calls leave no orphans behind.
func discardMedia(storage filestorage.FileStorageInterface, media []string, logger *zap.Logger) {
	for _, path := range media {
		if err := storage.Delete(path); err != nil {
			logger.Warn("failed to remove stored media after a rejected request",
				zap.String("path", path), zap.Error(err))
		}
	}
}
