package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/albumkit/internal/fetch"
	"github.com/serroba/albumkit/internal/host"
	"github.com/serroba/albumkit/internal/imagesaver"
	"github.com/serroba/albumkit/internal/messaging"
	"github.com/serroba/albumkit/internal/platform"
	"go.uber.org/zap"
)

// ImageHandler handles album save and inline image operations.
type ImageHandler struct {
	saver               *imagesaver.Saver
	fetcher             imagesaver.Fetcher
	grants              host.GrantStore
	publishNotification messaging.Publish[host.NotificationEvent]
	publishSaved        messaging.Publish[host.ImageSavedEvent]
	logger              *zap.Logger
}

// NewImageHandler creates a new image handler.
func NewImageHandler(
	saver *imagesaver.Saver,
	fetcher imagesaver.Fetcher,
	grants host.GrantStore,
	publishNotification messaging.Publish[host.NotificationEvent],
	publishSaved messaging.Publish[host.ImageSavedEvent],
	logger *zap.Logger,
) *ImageHandler {
	return &ImageHandler{
		saver:               saver,
		fetcher:             fetcher,
		grants:              grants,
		publishNotification: publishNotification,
		publishSaved:        publishSaved,
		logger:              logger,
	}
}

func (h *ImageHandler) SaveImage(ctx context.Context, req *SaveImageRequest) (*SaveImageResponse, error) {
	target := req.Body.Target
	if target == "" {
		target = req.Platform
	}

	p := platform.Detect(target, req.Body.OS)
	scope := platform.AlbumScope(p)
	saveID := uuid.NewString()

	logger := h.logger.With(zap.String("save_id", saveID), zap.String("session", req.SessionID))

	session := host.NewSession(req.SessionID, h.grants, host.Consent{
		Authorize:     req.Body.Consent.Authorize,
		OpenSettings:  req.Body.Consent.OpenSettings,
		SettingsGrant: req.Body.Consent.SettingsGrant,
	}, h.publishNotification, logger)

	var savedAt time.Time

	outcome := h.saver.Save(ctx, session, req.Body.URL, scope, func() {
		savedAt = time.Now()
	})

	if outcome.Stage == imagesaver.StageDone {
		h.announce(ctx, saveID, req.SessionID, savedAt, outcome.Image, logger)
	}

	resp := &SaveImageResponse{}
	resp.Body.SaveID = saveID
	resp.Body.Platform = string(p)
	resp.Body.Scope = string(scope)
	resp.Body.Stage = outcome.Stage.String()
	resp.Body.Permission = outcome.Permission.String()
	resp.Body.Cancelled = outcome.Cancelled

	resp.Body.Stages = make([]string, 0, len(outcome.Stages))
	for _, s := range outcome.Stages {
		resp.Body.Stages = append(resp.Body.Stages, s.String())
	}

	if outcome.Err != nil {
		resp.Body.Error = outcome.Err.Error()
	}

	if outcome.Stage == imagesaver.StageDone && outcome.Image != nil {
		resp.Body.Image = &SavedImage{
			Path:   outcome.Image.Path,
			Format: outcome.Image.Format,
			Width:  outcome.Image.Width,
			Height: outcome.Image.Height,
			Size:   outcome.Image.Size,
		}
	}

	return resp, nil
}

func (h *ImageHandler) announce(
	ctx context.Context,
	saveID, session string,
	savedAt time.Time,
	info *imagesaver.ImageInfo,
	logger *zap.Logger,
) {
	event := &host.ImageSavedEvent{
		SaveID:  saveID,
		Session: session,
		URL:     info.URL,
		Path:    info.Path,
		Format:  info.Format,
		Width:   info.Width,
		Height:  info.Height,
		Size:    info.Size,
		SavedAt: savedAt,
	}

	if err := h.publishSaved(ctx, event); err != nil {
		logger.Error("failed to publish saved event", zap.Error(err))
	}
}

func (h *ImageHandler) DataURI(ctx context.Context, req *DataURIRequest) (*DataURIResponse, error) {
	uri, err := fetch.DataURI(ctx, h.fetcher, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, fetch.ErrUnsupportedURL):
			return nil, huma.Error400BadRequest("url must be http or https")
		case errors.Is(err, fetch.ErrForbiddenAddress):
			return nil, huma.Error400BadRequest("url must point to a public address")
		case errors.Is(err, fetch.ErrNotImage), errors.Is(err, fetch.ErrTooLarge):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		default:
			h.logger.Warn("failed to inline image", zap.String("url", req.URL), zap.Error(err))

			return nil, huma.Error502BadGateway("failed to fetch image")
		}
	}

	resp := &DataURIResponse{}
	resp.Body.DataURI = uri

	return resp, nil
}
