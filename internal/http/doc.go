// Package http provides HTTP handlers and middleware for the roombook API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","user"} with the token also surfaced via
//     the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 No Content
//     and clears the cookie. Logout succeeds even for stale tokens.
//   - POST /register: public self sign-up. New accounts always get the
//     TEACHER role.
//   - GET /users, POST /users, GET/PATCH/DELETE /users/{id},
//     POST /users/{id}/reset-password: administrator controlled user
//     management endpoints exchanging the `userDTO` payload defined in
//     user_handler.go.
//   - GET /rooms, POST /rooms, GET/PATCH/DELETE /rooms/{id}: room catalog
//     endpoints exchanging the `roomDTO` payload defined in room_handler.go.
//     All of them require admin privileges.
//   - GET /bookings, POST /bookings, PATCH/DELETE /bookings/{id}: the shared
//     calendar. Listing returns every booking enriched with user and room
//     names; mutations of existing bookings are limited to the owner or an
//     admin. Conflicting reservations are rejected with 409.
//   - GET /profile, PATCH /profile, PUT /profile/password: the authenticated
//     user's own account.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
