/*
Package yieldstream defines the basic types and interfaces shared by the
yield stream accounting engine.

A yield stream lets a streamer allocate appreciating vault shares to a
receiver: the receiver may claim the appreciation (yield) while the stream
owner keeps the right to reclaim the original principal. This package holds
the building blocks the extensions are composed from: addresses and
conditions, the KVStore interface family, fractions and model metadata.

The actual accounting lives in the x/... extensions:

	x/token       asset and share ledgers (balances, allowances)
	x/vault       the exchange rate oracle and deposit/redeem engine
	x/streamtoken ownership registry for stream ids
	x/stream      principal ledger, yield engine and orchestrator
*/
package yieldstream
