// Package fakeproc implements a scriptable newline-delimited JSON-RPC subprocess.
//
// Test binaries re-execute themselves in a fake mode: TestMain calls Main, which
// takes over the process when the mode variable is set. Modes:
//
//	echo     replies to each request with its id, a per-process sequence number and the pid;
//	         "ping" is answered with the literal {"jsonrpc":"2.0","id":<id>,"result":"pong"};
//	         "env" with params {"name":...} is answered with that variable's value in the fake
//	reject   like echo, but answers "initialize" with an error
//	silent   reads requests and never replies
//	garbage  replies with a line that is not JSON
//	blank    replies with an empty line
//	exit     exits immediately
//	once     replies to the first request, then exits
//	crash    replies to the first request, then exits with CrashExitCode
//	stubborn like echo, but ignores SIGTERM
package fakeproc
