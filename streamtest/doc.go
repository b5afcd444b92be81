/*
Package streamtest provides helpers for testing code built on top of the
yield stream engine. This includes fresh in-memory stores, random
addresses and sequence identifiers.
*/
package streamtest
