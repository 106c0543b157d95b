// Package posts implements Quill's post resource: the model, the ownership
// guard, the store interface with Postgres and in-memory implementations, and
// the in-process feed that fans post events out to live subscribers.
package posts
