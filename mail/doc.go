// Package mail renders account emails and delivers them off the request path.
//
// Handlers never talk to the mail server directly. They render a Message with
// the template helpers and hand it to a Queue, whose single worker forwards it
// to a Sender. A full queue drops the message and counts it; request latency
// never depends on SMTP.
//
// # What this package must NOT do
//
//   - Block a caller on delivery.
//   - Decide whether an email should be sent; the Engine owns that.
package mail
