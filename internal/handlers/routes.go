package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// MetadataSessionThrottle marks operations that accept one call per session
// within the throttle window. Duplicate taps are rejected.
const MetadataSessionThrottle = "sessionThrottle"

// RegisterRoutes registers the album and grant routes.
func RegisterRoutes(api huma.API, images *ImageHandler, grants *GrantHandler) {
	// POST /images/save - Save a remote image to the album
	// Guarded per session: repeated taps within the window are rejected
	huma.Register(api, huma.Operation{
		OperationID: "save-image",
		Method:      http.MethodPost,
		Path:        "/images/save",
		Summary:     "Save image to album",
		Description: "Checks the album authorization of the session, asks for it when missing, then fetches and stores the image.",
		Tags:        []string{"Images"},
		Metadata: map[string]any{
			MetadataSessionThrottle: true,
		},
	}, images.SaveImage)

	huma.Register(api, huma.Operation{
		OperationID: "image-data-uri",
		Method:      http.MethodGet,
		Path:        "/images/base64",
		Summary:     "Inline image as data URI",
		Tags:        []string{"Images"},
	}, images.DataURI)

	huma.Register(api, huma.Operation{
		OperationID: "list-grants",
		Method:      http.MethodGet,
		Path:        "/sessions/{session}/grants",
		Summary:     "List session grants",
		Tags:        []string{"Grants"},
	}, grants.ListGrants)

	huma.Register(api, huma.Operation{
		OperationID: "set-grant",
		Method:      http.MethodPut,
		Path:        "/sessions/{session}/grants/{scope}",
		Summary:     "Change a session grant",
		Description: "Turns an album scope on or off, as the host settings page does.",
		Tags:        []string{"Grants"},
	}, grants.SetGrant)
}
