// Package server provides HTTP routing, middleware and the handlers of the menu board web service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses gorilla/mux internally, which gives
// path variables such as {key} and method matching with 405 responses.
//
// # Routes
//
//	GET    /                            dashboard with the display URL
//	GET    /display                     unattended display page
//	GET    /display/stream              SSE: rendered screen frames
//	GET    /login, POST /login          chef sign-in form
//	POST   /logout                      sign out
//	GET    /admin                       editor (?date=, ?tab=daily|settings), session required
//	POST   /admin/menu                  set one course of one date
//	POST   /admin/settings              set one settings field
//	GET    /admin/preview/stream        SSE: live preview frames for ?date=
//	GET    /api/documents/{key}         JSON snapshot with an ETag
//	PATCH  /api/documents/{key}         merge write, session required
//	GET    /api/documents/{key}/stream  SSE: JSON snapshots, as read by store.Remote
//	POST   /api/session                 token sign-in
//	GET    /api/session                 current session
//	DELETE /api/session                 token sign-out
//	GET    /healthz                     liveness
//	GET    /assets/..., /static/...     background images, fonts, script and stylesheet
//
// # Streams
//
// Every stream handler owns one subscription for the lifetime of its request
// and hands values to the connection through a [Mailbox], which keeps only
// the newest. A slow client therefore skips intermediate frames instead of
// holding up writers. Streams are never compressed.
//
// # Sessions
//
// Browsers carry the session token in the [SessionCookie] cookie; the CLI sends
// it as a bearer token. [RequireSession] redirects pages to /login and answers
// API calls with 401.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
