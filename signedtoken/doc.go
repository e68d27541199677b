// Package signedtoken encodes small claim maps into URL-safe, tamper-evident,
// time-limited strings for email-verification and password-reset links.
//
// # Format
//
//	base64url(json(claims)) "." base64url(issued-at seconds) "." base64url(HMAC-SHA256)
//
// The MAC key is derived from the secret and a fixed context string (salt), so
// links minted for one purpose never verify under another salt even when the
// secret is shared with the JWT signer.
//
// Decoding distinguishes an expired envelope ([ErrTokenExpired]) from a forged
// or corrupted one ([ErrInvalidSignature]) so callers can word their responses
// differently. The codec is stateless: it does not prevent replay within the
// max-age window.
package signedtoken
