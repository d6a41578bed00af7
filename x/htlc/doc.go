/*
Package htlc implements the hash time locked commitment engine.

A swap locks funds under a secret hash and a deadline. The counter
party can claim the funds by revealing the secret before the deadline.
After the deadline only the depositor can recover them. Revealing the
secret on one ledger is what authorizes the mirrored claim on the
other, which makes the exchange atomic without a trusted middleman.

The engine supports two counter party binding policies, fixed at
genesis. Under the account policy the claimant is recorded as a native
address and a claim or refund can resolve the swap from the secret
alone. Under the opaque policy the claimant is recorded as raw bytes
plus their hash, which supports addressing schemes foreign to this
ledger, and operations must name the swap identifier.

Swap records are never deleted. A finalized swap stays in the store as
an audit trail and its identifier can never be reused.
*/
package htlc
