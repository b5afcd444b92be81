/*
Package errors implements custom error interfaces for the yield stream
engine.

The idea is to reuse as many errors from this package as possible and define
new errors only when necessary. Errors declared here are categorized by root
causes, each carrying a unique code. Operations never return an ad-hoc
error; they wrap one of the registered roots with a description of the
failing detail, so callers can match with Is while users get a readable
message.
*/
package errors
