// Package services talks to a remote lineup backend over its REST API.
//
// [APIService] performs JSON requests and turns error bodies into errors that match the shared sentinels.
// [BackendClient] builds on it to read and write playlists and scanner links, so the CLI can run the
// same reorder and sync tasks against a remote server as against the local database.
//
// # Authentication
//
// [NewHTTPClient] returns a client that obtains tokens with the OAuth2 client credentials flow
// when the backend config names a token URL and client ID, and a plain client otherwise.
//
// # Error Handling
//
// Error bodies carry a code that is mapped back onto the shared sentinels:
//   - not_found : [shared.ErrNotFound]
//   - invalid_input : [shared.ErrInvalidInput]
//   - already_linked : [shared.ErrAlreadyLinked]
//
// Anything else, including transport failures, wraps [shared.ErrAPIRequest] or [shared.ErrServiceUnavailable].
package services
