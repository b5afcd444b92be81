/*
Package token implements a single denomination ledger with integer base
unit amounts.

Balances are tracked per address and may be moved directly by the balance
owner or by an approved spender within the granted allowance. The package
exposes a Controller that other packages embed to manage their own ledger
instance. Several independent ledgers can coexist in one database as long
as they are constructed with distinct bucket names.
*/
package token
