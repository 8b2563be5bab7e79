// Package schema holds the JSON-RPC envelopes the bridge produces or inspects.
package schema
