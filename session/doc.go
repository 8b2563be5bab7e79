// Package session maps session ids to dedicated subprocess channels.
//
// A Session lazily starts its channel on the first Send and serializes all
// sends, so the positional request/reply correlation of the channel holds even
// when several HTTP calls share one session id. A Registry creates sessions on
// demand and never evicts them; Close tears all of them down at shutdown.
package session
