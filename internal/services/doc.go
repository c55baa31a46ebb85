// Package services talks to a running menuboard server on behalf of the CLI.
//
// # API Service
//
// [APIService] sends raw JSON requests and returns an [APIResponse] holding the status, headers and
// body, with the body decoded when it is JSON. The typed calls map onto the session API:
//
//   - [APIService.Login] : POST /api/session, credentials for a token
//   - [APIService.Session] : GET /api/session, the session a token belongs to
//   - [APIService.Logout] : DELETE /api/session, revokes the token
//   - [APIService.Health] : GET /healthz
//
// Document reads and writes go through store.Remote instead, which shares the same bearer token.
//
// # Token File
//
// [TokenFile] keeps the token and the server it was issued by in ~/.menuboard/session.json,
// written with mode 0600.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAuthFailed] : credentials rejected
//   - [shared.ErrNotAuthenticated] : no token, or the server no longer accepts it
//   - [shared.ErrAPIRequest] : HTTP request failed or the response was malformed
//   - [shared.ErrServiceUnavailable] : the server answered with an unexpected status
package services
