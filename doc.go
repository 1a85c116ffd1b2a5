// Package pagecookie provides a request-scoped accessor for reading,
// writing, and clearing a single HTTP cookie while rendering a page. It
// includes:
//
//   - Accessor with fluent configuration (path/domain/TTL/logger/clock).
//   - Page classification so cookies are only written on public content
//     pages, never from administrative requests.
//   - An explicit Result for Set instead of a silent no-op.
//   - Expiration policy: default TTL (31 days), session, or absolute.
//   - Text sanitizing of every value returned by Get.
//   - Response tracking middleware that turns late writes (headers already
//     sent) into ErrHeadersWritten.
//
// Notes:
//   - Values are query-escaped on write and unescaped on read.
//   - Clear also removes the cookie from the request's view, so later Get
//     calls in the same request report it as absent.
//   - If SameSite=None is used, Secure must be true.
package pagecookie
