package imagesaver

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Host bundles the per-session collaborators of a save run.
type Host interface {
	Permissions
	Notifier
}

// Messages are the user-facing texts shown during a run.
type Messages struct {
	Loading       string
	Saved         string
	Cancelled     string
	Failed        string
	DeniedTitle   string
	DeniedContent string
}

// DefaultMessages are used when the saver is built without custom texts.
var DefaultMessages = Messages{
	Loading:       "Saving image...",
	Saved:         "Saved!",
	Cancelled:     "Cancelled",
	Failed:        "Save failed",
	DeniedTitle:   "Album access was denied",
	DeniedContent: "Open permission settings to change the authorization?",
}

// Outcome describes a finished save run.
type Outcome struct {
	URL        string
	Scope      Scope
	Stage      Stage
	Stages     []Stage
	Permission PermissionState
	Image      *ImageInfo
	// Cancelled is true when the user dismissed the settings dialog.
	Cancelled bool
	Err       error
}

// Saver runs the permission-gated save workflow. One Saver serves many
// runs; each Save call owns its own state.
type Saver struct {
	fetcher   Fetcher
	persister Persister
	logger    *zap.Logger
	messages  Messages
}

// New creates a saver. A zero Messages value selects DefaultMessages.
func New(fetcher Fetcher, persister Persister, logger *zap.Logger, messages Messages) *Saver {
	if messages == (Messages{}) {
		messages = DefaultMessages
	}

	return &Saver{
		fetcher:   fetcher,
		persister: persister,
		logger:    logger,
		messages:  messages,
	}
}

// run is the state of a single save attempt.
type run struct {
	out    *Outcome
	logger *zap.Logger
}

func (r *run) advance(ev event) {
	from := r.out.Stage

	to, ok := transition(from, ev)
	if !ok {
		r.logger.Error("undefined stage transition",
			zap.Stringer("stage", from),
			zap.Int("event", int(ev)),
		)

		return
	}

	r.out.Stage = to
	r.out.Stages = append(r.out.Stages, to)

	r.logger.Debug("stage transition",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
}

func (r *run) fail(err error) {
	r.out.Err = err
	r.advance(eventError)
}

// Save fetches url and persists it, asking for scope first when needed.
// done runs exactly once when the image is saved and never otherwise.
//
// The loading indicator is hidden as soon as the permission query returns,
// so it is not visible while the image is fetched and persisted.
func (s *Saver) Save(ctx context.Context, host Host, url string, scope Scope, done func()) *Outcome {
	r := &run{
		out: &Outcome{
			URL:    url,
			Scope:  scope,
			Stage:  StageCheckingPermission,
			Stages: []Stage{StageCheckingPermission},
		},
		logger: s.logger.With(zap.String("url", url), zap.String("scope", string(scope))),
	}

	host.ShowLoading(ctx, s.messages.Loading)

	granted, err := host.Granted(ctx, scope)

	host.HideLoading(ctx)

	switch {
	case err != nil:
		r.fail(fmt.Errorf("%w: %w", ErrPermissionQuery, err))
	case granted:
		r.out.Permission = PermissionGranted
		r.advance(eventGranted)
	default:
		r.advance(eventNotGranted)
		s.requestAuth(ctx, host, r)
	}

	if r.out.Stage == StageSaving {
		s.save(ctx, r)
	}

	s.finish(ctx, host, r, done)

	return r.out
}

func (s *Saver) requestAuth(ctx context.Context, host Host, r *run) {
	scope := r.out.Scope

	ok, err := host.Authorize(ctx, scope)
	if err != nil {
		r.logger.Warn("authorization prompt failed", zap.Error(err))
	}

	if ok && err == nil {
		r.out.Permission = PermissionGranted
		r.advance(eventGranted)

		return
	}

	r.out.Permission = PermissionDenied

	confirmed, err := host.Confirm(ctx, s.messages.DeniedTitle, s.messages.DeniedContent)
	if err != nil {
		r.logger.Warn("settings dialog failed", zap.Error(err))
	}

	if !confirmed || err != nil {
		r.out.Cancelled = true
		r.out.Err = ErrPermissionDenied
		r.advance(eventNotGranted)

		return
	}

	granted, err := host.OpenSettings(ctx, scope)
	if err != nil {
		r.logger.Warn("settings surface failed", zap.Error(err))
	}

	if granted && err == nil {
		r.out.Permission = PermissionGranted
		r.advance(eventGranted)

		return
	}

	r.out.Err = ErrPermissionDenied
	r.advance(eventNotGranted)
}

func (s *Saver) save(ctx context.Context, r *run) {
	info, err := s.fetcher.Fetch(ctx, r.out.URL)
	if err != nil {
		r.fail(fmt.Errorf("%w: %w", ErrFetchFailed, err))

		return
	}

	if info == nil {
		r.fail(fmt.Errorf("%w: no image returned", ErrFetchFailed))

		return
	}

	r.out.Image = info

	if err := s.persister.Persist(ctx, info); err != nil {
		r.fail(fmt.Errorf("%w: %w", ErrPersistFailed, err))

		return
	}

	r.advance(eventSaved)
}

func (s *Saver) finish(ctx context.Context, host Host, r *run, done func()) {
	switch r.out.Stage {
	case StageDone:
		if done != nil {
			done()
		}

		host.Toast(ctx, s.messages.Saved, IconSuccess)
		r.logger.Info("image saved", zap.String("path", r.out.Image.Path))
	case StageFailed:
		if r.out.Cancelled {
			host.Toast(ctx, s.messages.Cancelled, IconNone)
		} else {
			host.Toast(ctx, s.messages.Failed, IconError)
		}

		r.logger.Info("image save failed",
			zap.Stringer("permission", r.out.Permission),
			zap.Bool("cancelled", r.out.Cancelled),
			zap.Error(r.out.Err),
		)
	}
}
