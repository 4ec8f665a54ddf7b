// Package client is the HTTP/JSON client for the storykeeper API.
//
// HTTPClient speaks to the /api/v1 endpoints and translates transport
// failures into ErrUnavailable and error responses into *APIError, which can
// be matched with errors.Is against ErrUnauthorized, ErrNotFound and
// ErrConflict. The client is stateless: callers keep the tokens and pass the
// access token to every protected call.
package client
