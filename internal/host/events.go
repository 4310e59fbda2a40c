package host

import "time"

const (
	// TopicNotifications carries what a session's UI should display.
	TopicNotifications = "ui.notifications"
	// TopicImageSaved carries completed saves.
	TopicImageSaved = "album.saved"
)

// NotificationKind identifies a notification surface action.
type NotificationKind string

const (
	KindLoadingShown   NotificationKind = "loading_shown"
	KindLoadingHidden  NotificationKind = "loading_hidden"
	KindToast          NotificationKind = "toast"
	KindConfirm        NotificationKind = "confirm"
	KindSettingsOpened NotificationKind = "settings_opened"
)

// NotificationEvent is one UI notification addressed to a session.
type NotificationEvent struct {
	Session string           `json:"session"`
	Kind    NotificationKind `json:"kind"`
	Title   string           `json:"title,omitempty"`
	Content string           `json:"content,omitempty"`
	Icon    string           `json:"icon,omitempty"`
	At      time.Time        `json:"at"`
}

func (e NotificationEvent) MessageKey() string { return e.Session }

// ImageSavedEvent is published once per successful save.
type ImageSavedEvent struct {
	SaveID  string    `json:"saveId"`
	Session string    `json:"session"`
	URL     string    `json:"url"`
	Path    string    `json:"path"`
	Format  string    `json:"format"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Size    int64     `json:"size"`
	SavedAt time.Time `json:"savedAt"`
}

func (e ImageSavedEvent) MessageKey() string { return e.Session }
