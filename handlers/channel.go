package handlers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"ytscribe/errors"
	"ytscribe/results"
	"ytscribe/services/job"
	"ytscribe/storage"
	"ytscribe/validation"
)

type ChannelHandler struct {
	jobs    job.Service
	results *results.Writer
	spaces  *storage.SpacesClient
	log     *logrus.Entry
}

// NewChannelHandler wires the job service and artifact writer into the HTTP
// surface. spaces may be nil; archive uploads are then skipped.
func NewChannelHandler(jobs job.Service, writer *results.Writer, spaces *storage.SpacesClient, log *logrus.Logger) *ChannelHandler {
	return &ChannelHandler{
		jobs:    jobs,
		results: writer,
		spaces:  spaces,
		log:     log.WithField("component", "handlers"),
	}
}

// Process launches channel processing in the background and answers
// immediately with the resolved channel identity.
func (h *ChannelHandler) Process(c *fiber.Ctx) error {
	const op = "ChannelHandler.Process"

	channelID := c.FormValue("channelId")
	if err := validation.ValidateChannelID(channelID); err != nil {
		return errors.InvalidInput(op, err, err.Error())
	}

	result, err := h.jobs.Start(c.Context(), job.StartRequest{
		ChannelID:  channelID,
		APIKey:     c.FormValue("apiKey"),
		FolderName: validation.SanitizeFolderName(c.FormValue("folderName"), ""),
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":     "Channel processing started!",
		"channelName": result.ChannelName,
		"totalVideos": result.TotalVideos,
	})
}

// Progress reports the live snapshot of the current job. Before any job has
// run it answers with the zero snapshot.
func (h *ChannelHandler) Progress(c *fiber.Ctx) error {
	return c.JSON(h.jobs.Status())
}

// StopProcess flags the running job for cancellation. Always answers OK;
// cancelling an idle service is a no-op.
func (h *ChannelHandler) StopProcess(c *fiber.Ctx) error {
	h.jobs.Cancel()
	return c.JSON(fiber.Map{
		"message": "Process stop requested",
	})
}

// DownloadAll streams a zip of the current artifacts, named after the
// folder requested at job start.
func (h *ChannelHandler) DownloadAll(c *fiber.Ctx) error {
	const op = "ChannelHandler.DownloadAll"

	folder := h.jobs.FolderName()
	buf, err := h.results.Archive(folder)
	if err != nil {
		return errors.Internal(op, err, "Failed to build archive")
	}

	if h.spaces != nil {
		h.uploadArchive(buf)
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.zip"`, folder))
	return c.Send(buf.Bytes())
}

// uploadArchive mirrors the archive to object storage in the background.
// Failures are logged and never affect the download response.
func (h *ChannelHandler) uploadArchive(buf *bytes.Buffer) {
	snap := h.jobs.Status()
	channelID := snap.ChannelID
	if channelID == "" {
		channelID = "unknown"
	}

	cp := new(bytes.Buffer)
	cp.Write(buf.Bytes())

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		key, err := h.spaces.SaveArchive(ctx, channelID, cp)
		if err != nil {
			h.log.WithError(err).Warn("Archive upload failed")
			return
		}
		h.log.WithField("key", key).Info("Archive uploaded")
	}()
}

func (h *ChannelHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
