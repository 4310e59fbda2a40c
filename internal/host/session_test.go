package host_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/albumkit/internal/host"
	"github.com/serroba/albumkit/internal/imagesaver"
	"github.com/serroba/albumkit/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const scope = imagesaver.ScopeWritePhotosAlbum

var errMock = errors.New("mock error")

type capture struct {
	events []host.NotificationEvent
	err    error
}

func (c *capture) publish(_ context.Context, e *host.NotificationEvent) error {
	c.events = append(c.events, *e)

	return c.err
}

func (c *capture) kinds() []host.NotificationKind {
	out := make([]host.NotificationKind, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Kind)
	}

	return out
}

type failingGrants struct{}

func (failingGrants) Get(context.Context, string, imagesaver.Scope) (imagesaver.PermissionState, error) {
	return imagesaver.PermissionUnknown, errMock
}

func (failingGrants) Set(context.Context, string, imagesaver.Scope, bool) error { return errMock }

func (failingGrants) List(context.Context, string) (map[imagesaver.Scope]bool, error) {
	return nil, errMock
}

func TestSession_Granted(t *testing.T) {
	t.Run("reflects stored grant", func(t *testing.T) {
		grants := store.NewGrantMemoryStore()
		s := host.NewSession("s1", grants, host.Consent{}, (&capture{}).publish, zap.NewNop())

		ok, err := s.Granted(context.Background(), scope)
		require.NoError(t, err)
		assert.False(t, ok, "unknown is not granted")

		_ = grants.Set(context.Background(), "s1", scope, true)

		ok, err = s.Granted(context.Background(), scope)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		s := host.NewSession("s1", failingGrants{}, host.Consent{}, (&capture{}).publish, zap.NewNop())

		_, err := s.Granted(context.Background(), scope)

		require.ErrorIs(t, err, errMock)
	})
}

func TestSession_Authorize(t *testing.T) {
	t.Run("grant is persisted", func(t *testing.T) {
		grants := store.NewGrantMemoryStore()
		s := host.NewSession("s1", grants, host.Consent{Authorize: true}, (&capture{}).publish, zap.NewNop())

		ok, err := s.Authorize(context.Background(), scope)

		require.NoError(t, err)
		assert.True(t, ok)

		state, _ := grants.Get(context.Background(), "s1", scope)
		assert.Equal(t, imagesaver.PermissionGranted, state)
	})

	t.Run("refusal is persisted as denied", func(t *testing.T) {
		grants := store.NewGrantMemoryStore()
		s := host.NewSession("s1", grants, host.Consent{}, (&capture{}).publish, zap.NewNop())

		ok, err := s.Authorize(context.Background(), scope)

		require.NoError(t, err)
		assert.False(t, ok)

		state, _ := grants.Get(context.Background(), "s1", scope)
		assert.Equal(t, imagesaver.PermissionDenied, state)
	})

	t.Run("store failure is an error", func(t *testing.T) {
		s := host.NewSession("s1", failingGrants{}, host.Consent{Authorize: true}, (&capture{}).publish, zap.NewNop())

		ok, err := s.Authorize(context.Background(), scope)

		require.Error(t, err)
		assert.False(t, ok)
	})
}

func TestSession_OpenSettings(t *testing.T) {
	t.Run("enabling in settings grants the scope", func(t *testing.T) {
		grants := store.NewGrantMemoryStore()
		c := &capture{}
		s := host.NewSession("s1", grants, host.Consent{SettingsGrant: true}, c.publish, zap.NewNop())

		ok, err := s.OpenSettings(context.Background(), scope)

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []host.NotificationKind{host.KindSettingsOpened}, c.kinds())

		state, _ := grants.Get(context.Background(), "s1", scope)
		assert.Equal(t, imagesaver.PermissionGranted, state)
	})

	t.Run("leaving settings unchanged keeps the refusal", func(t *testing.T) {
		grants := store.NewGrantMemoryStore()
		_ = grants.Set(context.Background(), "s1", scope, false)
		s := host.NewSession("s1", grants, host.Consent{}, (&capture{}).publish, zap.NewNop())

		ok, err := s.OpenSettings(context.Background(), scope)

		require.NoError(t, err)
		assert.False(t, ok)

		state, _ := grants.Get(context.Background(), "s1", scope)
		assert.Equal(t, imagesaver.PermissionDenied, state)
	})
}

func TestSession_Notifications(t *testing.T) {
	t.Run("publishes each surface action for the session", func(t *testing.T) {
		c := &capture{}
		s := host.NewSession("s1", store.NewGrantMemoryStore(), host.Consent{OpenSettings: true}, c.publish, zap.NewNop())

		s.ShowLoading(context.Background(), "Saving")
		s.HideLoading(context.Background())
		s.Toast(context.Background(), "Saved", imagesaver.IconSuccess)
		confirmed, err := s.Confirm(context.Background(), "Denied", "Open settings?")

		require.NoError(t, err)
		assert.True(t, confirmed)
		assert.Equal(t, []host.NotificationKind{
			host.KindLoadingShown,
			host.KindLoadingHidden,
			host.KindToast,
			host.KindConfirm,
		}, c.kinds())

		for _, e := range c.events {
			assert.Equal(t, "s1", e.Session)
			assert.Equal(t, "s1", e.MessageKey())
			assert.False(t, e.At.IsZero())
		}

		assert.Equal(t, "success", c.events[2].Icon)
		assert.Equal(t, "Open settings?", c.events[3].Content)
	})

	t.Run("publish failures are swallowed", func(t *testing.T) {
		c := &capture{err: errMock}
		s := host.NewSession("s1", store.NewGrantMemoryStore(), host.Consent{}, c.publish, zap.NewNop())

		assert.NotPanics(t, func() {
			s.Toast(context.Background(), "Saved", imagesaver.IconSuccess)
		})

		confirmed, err := s.Confirm(context.Background(), "t", "c")

		require.NoError(t, err)
		assert.False(t, confirmed)
	})
}
