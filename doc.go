/*
Package clasp defines the core abstractions of the clasp ledger engine.

A clasp application is a deterministic state machine. Transactions carry a
single message, a router dispatches the message to a handler registered for
its path, and a stack of decorators wraps the router with cross-cutting
behavior such as logging, panic recovery and savepoints. All state lives in
a key-value store; a handler either commits all of its writes or none of
them.

This package contains only interfaces and small value types shared by every
extension: addresses and conditions, time, transactions and messages,
handlers and decorators, store interfaces and query plumbing. Extensions
live under x/ and provide the actual business logic.
*/
package clasp
