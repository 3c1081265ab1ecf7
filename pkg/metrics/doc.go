/*
Package metrics provides Prometheus metrics collection and exposition for
a peerdag peer process.

Counters and histograms are registered at package init and exposed via
Handler for scraping. Timer is a small helper for recording operation
durations into a histogram without repeating time.Since boilerplate at
every call site.
*/
package metrics
