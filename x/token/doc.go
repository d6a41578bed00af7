/*
Package token implements a ledger for fungible assets that are foreign
to the native currency, shaped after the common external token
interface: registered tickers, per-account balances and spender
allowances.

All amounts are integers in the smallest denomination of the asset.
The Controller is the only sanctioned write path for balances. Transfer
observers can be registered per destination address and run inside the
transfer, so a recipient can react to incoming funds and reject them.
*/
package token
