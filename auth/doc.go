// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth issues and verifies user session tokens.

This is the identity boundary in front of the poll engine. Everything past
it trusts the user id it produces.

# Session Tokens

Tokens are the user id followed by an HMAC-SHA256 signature:

	token := auth.IssueToken(userID, salt)
	userID, err := auth.ParseToken(token, salt)

The signature is URL-safe base64 without padding. Tokens are stateless, so
nothing is stored server-side and any token signed with the current salt is
valid.

# Requests

Clients send the token as a bearer token or, for websocket handshakes, in
the token query parameter:

	Authorization: Bearer <token>
	GET /ws?token=<token>

Authenticate returns ErrMissingToken or ErrInvalidToken. WithUser and
UserFromContext carry the resolved id through a request context.

# IP Hashing

Client addresses are never logged raw:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
