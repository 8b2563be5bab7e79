// Package stdio runs a child process that speaks newline-delimited JSON over its
// standard streams.
//
// A Channel owns one process and its three pipes. Send writes one JSON document
// as a single line to the child's stdin and waits, up to Config.Timeout, for one
// line on its stdout. There is no id matching: the N-th line read answers the
// N-th document written. The wrapped program must therefore never print
// unsolicited output on stdout and must answer requests in order; a reply that
// arrives after its request timed out is handed to the next Send.
//
// Anything the child writes to stderr is logged at debug level.
package stdio
