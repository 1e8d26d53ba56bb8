// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(groupID, salt)
	err := auth.ValidateAdminKey(groupID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same group ID and salt always produce the same key. This allows validation
without storing the key in the database.

# Member Tokens

Member tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateMemberToken()

Tokens are URL-safe base64 encoded. Each member gets a unique token when
joining a group; the reveal path resolves the viewer from this token and
never from a request parameter, so one member can never request another
member's assignment.

# Share Slugs

Share slugs create URL-friendly identifiers for groups:

	slug := auth.GenerateShareSlug(groupID, salt)

Slugs are base62 encoded (alphanumeric only) for easy sharing. Like admin keys,
they're deterministic from the group ID and salt.

# IP Hashing

For privacy-preserving abuse detection on the join path:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
