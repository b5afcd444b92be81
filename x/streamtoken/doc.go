/*
Package streamtoken keeps track of who owns each stream.

Ownership is decoupled from the stream accounting: transferring a stream
token only changes who may top up or close the stream, never how shares
or principal are booked. Identifiers are issued by a sequence starting at
one and are never reused, not even after a burn.
*/
package streamtoken
