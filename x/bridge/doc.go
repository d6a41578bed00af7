/*
Package bridge connects the token ledger to an external chain through a
trusted operator.

The operator mints wrapped units after witnessing a deposit on the
counter ledger and anyone can burn their own wrapped units to request a
release on the other side. The operator address is kept in the package
configuration.
*/
package bridge
