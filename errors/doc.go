/*
Package errors implements custom error interfaces for clasp.

The package is built around coded root errors. Every error returned by the
engine wraps one of the root errors declared here (or registered by an
extension), so that a client can test for the kind of failure without
parsing strings and the transport can return a stable numeric code. Use
errors.Wrap to add context while preserving the root cause and the stack
trace of the original failure.
*/
package errors
