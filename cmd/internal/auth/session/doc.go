// Package session implements Quill's stateless session tokens.
//
// Tokens are PASETO v4.public: signed with a process-wide Ed25519 key, carry
// the account id as subject, and are valid for a fixed lifetime (7 days by
// default). Nothing is persisted server-side; verification is a pure function
// of the token and the key, which keeps the request pipeline O(1) and
// horizontally scalable at the cost of early revocation.
//
// Transport (the HTTP cookie) is intentionally out of scope here.
package session
