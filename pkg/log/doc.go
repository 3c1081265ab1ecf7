/*
Package log provides structured logging for peerdag using zerolog.

It wraps a single global zerolog.Logger, initialized once via Init, with
helper constructors for attaching a component, peer, or patch identifier
to a child logger. Output is either JSON (for production) or a
human-readable console writer (for local development), selected by
Config.JSONOutput.
*/
package log
