// Package host adapts a client session to the ports of the image saver.
package host

import (
	"context"
	"time"

	"github.com/serroba/albumkit/internal/imagesaver"
	"github.com/serroba/albumkit/internal/messaging"
	"go.uber.org/zap"
)

// GrantStore holds the authorization state of every session.
type GrantStore interface {
	Get(ctx context.Context, session string, scope imagesaver.Scope) (imagesaver.PermissionState, error)
	Set(ctx context.Context, session string, scope imagesaver.Scope, granted bool) error
	List(ctx context.Context, session string) (map[imagesaver.Scope]bool, error)
}

// Consent carries the user's answers to the prompts a save may raise. The
// client collects them before calling the service.
type Consent struct {
	// Authorize answers the authorization prompt.
	Authorize bool
	// OpenSettings answers the "open settings?" dialog after a refusal.
	OpenSettings bool
	// SettingsGrant is whether the user enabled the scope in settings.
	SettingsGrant bool
}

// Session implements imagesaver.Host for one client session.
type Session struct {
	id      string
	grants  GrantStore
	consent Consent
	publish messaging.Publish[NotificationEvent]
	now     func() time.Time
	logger  *zap.Logger
}

// NewSession binds a session to its grants, consent answers and notification stream.
func NewSession(
	id string,
	grants GrantStore,
	consent Consent,
	publish messaging.Publish[NotificationEvent],
	logger *zap.Logger,
) *Session {
	return &Session{
		id:      id,
		grants:  grants,
		consent: consent,
		publish: publish,
		now:     time.Now,
		logger:  logger.With(zap.String("session", id)),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) Granted(ctx context.Context, scope imagesaver.Scope) (bool, error) {
	state, err := s.grants.Get(ctx, s.id, scope)
	if err != nil {
		return false, err
	}

	return state == imagesaver.PermissionGranted, nil
}

// Authorize records the user's answer to the prompt as the scope's grant.
func (s *Session) Authorize(ctx context.Context, scope imagesaver.Scope) (bool, error) {
	if err := s.grants.Set(ctx, s.id, scope, s.consent.Authorize); err != nil {
		return false, err
	}

	return s.consent.Authorize, nil
}

// OpenSettings records the grant chosen in settings, leaving a refusal in place.
func (s *Session) OpenSettings(ctx context.Context, scope imagesaver.Scope) (bool, error) {
	s.notify(ctx, NotificationEvent{Kind: KindSettingsOpened, Title: string(scope)})

	if !s.consent.SettingsGrant {
		return false, nil
	}

	if err := s.grants.Set(ctx, s.id, scope, true); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Session) ShowLoading(ctx context.Context, title string) {
	s.notify(ctx, NotificationEvent{Kind: KindLoadingShown, Title: title})
}

func (s *Session) HideLoading(ctx context.Context) {
	s.notify(ctx, NotificationEvent{Kind: KindLoadingHidden})
}

func (s *Session) Toast(ctx context.Context, title string, icon imagesaver.Icon) {
	s.notify(ctx, NotificationEvent{Kind: KindToast, Title: title, Icon: string(icon)})
}

func (s *Session) Confirm(ctx context.Context, title, content string) (bool, error) {
	s.notify(ctx, NotificationEvent{Kind: KindConfirm, Title: title, Content: content})

	return s.consent.OpenSettings, nil
}

// notify publishes best-effort; a lost notification never fails a save.
func (s *Session) notify(ctx context.Context, event NotificationEvent) {
	event.Session = s.id
	event.At = s.now()

	if err := s.publish(ctx, &event); err != nil {
		s.logger.Warn("failed to publish notification",
			zap.String("kind", string(event.Kind)),
			zap.Error(err),
		)
	}
}

var _ imagesaver.Host = (*Session)(nil)
