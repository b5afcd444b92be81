/*
Package stream implements the share/principal dual ledger at the heart of
the yield stream engine.

A stream allocates appreciating vault shares to a receiver. The ledger
books every stream twice: the individual stream records shares and
principal, and the receiver account aggregates both across all streams
pointing at the same receiver. Yield is the asset value of the aggregated
shares above the aggregated principal; the receiver may claim only that
surplus while the stream owner may reclaim the principal by closing.

The package splits responsibilities three ways: Ledger is the sole
mutator of the stored tables, Engine derives and claims yield through the
vault, and Controller orchestrates opening, topping up and closing
against the ownership registry.
*/
package stream
