// Package password implements account password hashing and verification with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification always uses the parameters embedded in the stored hash, so the
// cost can be raised in [Config] without invalidating existing accounts;
// [Argon2.NeedsUpgrade] reports hashes produced with weaker parameters.
//
// Hashing is CPU-bound and slow on purpose. Request paths go through [Pool],
// which bounds how many hashes run at once and gives up when the caller's
// context is cancelled.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords: callers supply plaintext and receive hashes.
//   - Import any other bloombox package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
