/*
Package cash defines a simple wallet implementation that powers the
native currency of the engine.

Each wallet stores a set of coins and is keyed by the owning address.
The Controller is the only sanctioned way for other extensions to move
balances around, so invariants like "no negative balances" are enforced
in one place.
*/
package cash
