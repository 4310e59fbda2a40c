package handlers

// ConsentAnswers are the user's answers to the prompts a save may raise.
type ConsentAnswers struct {
	Authorize     bool `doc:"Accept the authorization prompt"                  json:"authorize,omitempty"     required:"false"`
	OpenSettings  bool `doc:"Open settings after a refused authorization"      json:"openSettings,omitempty"  required:"false"`
	SettingsGrant bool `doc:"Enable the album scope once in the settings page" json:"settingsGrant,omitempty" required:"false"`
}

// SaveImageRequest is the request for saving a remote image to the album.
type SaveImageRequest struct {
	SessionID string `doc:"Client session"             header:"X-Session-ID" minLength:"1" required:"true"`
	Platform  string `doc:"Host build target"          example:"mp-weixin"   header:"X-Platform" required:"true"`
	Body      struct {
		URL     string         `doc:"Image to save"                        example:"https://example.com/cat.png" format:"uri" json:"url"`
		Target  string         `doc:"Build target, overrides X-Platform"   example:"mp-toutiao"                  json:"target,omitempty" required:"false"`
		OS      string         `doc:"Device OS for native app targets"     example:"ios"                         json:"os,omitempty"     required:"false"`
		Consent ConsentAnswers `json:"consent,omitempty" required:"false"`
	}
}

// SavedImage describes the image written to the album.
type SavedImage struct {
	Path   string `doc:"Album location" json:"path"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
}

// SaveImageResponse reports how a save run ended. A failed run is not an
// HTTP error.
type SaveImageResponse struct {
	Body struct {
		SaveID     string      `doc:"Identifier of this save run"      json:"saveId"`
		Platform   string      `doc:"Resolved platform"                json:"platform"`
		Scope      string      `doc:"Authorization scope that was used" json:"scope"`
		Stage      string      `doc:"Terminal stage"                   example:"done" json:"stage"`
		Stages     []string    `doc:"Every stage the run went through" json:"stages"`
		Permission string      `json:"permission"`
		Cancelled  bool        `json:"cancelled"`
		Image      *SavedImage `json:"image,omitempty"`
		Error      string      `json:"error,omitempty"`
	}
}

// DataURIRequest is the request for inlining a remote image.
type DataURIRequest struct {
	URL string `doc:"Image to inline" format:"uri" query:"url" required:"true"`
}

// DataURIResponse carries the inlined image.
type DataURIResponse struct {
	Body struct {
		DataURI string `doc:"base64 data URI" example:"data:image/png;base64,iVBORw0KGgo=" json:"dataUri"`
	}
}

// ListGrantsRequest is the request for a session's grants.
type ListGrantsRequest struct {
	Session string `doc:"Client session" path:"session"`
}

// ListGrantsResponse lists every scope the session has answered.
type ListGrantsResponse struct {
	Body struct {
		Session string          `json:"session"`
		Grants  map[string]bool `json:"grants"`
	}
}

// SetGrantRequest changes one scope of a session, as the settings page would.
type SetGrantRequest struct {
	Session string `doc:"Client session"      path:"session"`
	Scope   string `doc:"Authorization scope" enum:"scope.writePhotosAlbum,scope.album" path:"scope"`
	Body    struct {
		Granted bool `json:"granted"`
	}
}

// SetGrantResponse echoes the stored grant.
type SetGrantResponse struct {
	Body struct {
		Session string `json:"session"`
		Scope   string `json:"scope"`
		Granted bool   `json:"granted"`
	}
}
