// Package users is the user directory: the User record, its repositories and
// the Service the auth engine resolves identities through.
//
// Emails are normalised to lower case before every lookup and write, so
// "Alice@Example.com" and "alice@example.com" are the same account.
//
// Two repositories are provided: PostgresRepository for production, driven
// through database/sql with the pgx stdlib driver, and MemoryRepository for
// tests and the in-process development server.
package users
