// Package connectors provides source connector implementations and shared
// HTTP plumbing.
//
// Each upstream source gets its own subpackage implementing the
// driven.Connector port:
//
//   - epidemic: daily epidemiological counts (key-less API)
//   - weather: sub-daily weather observations (key-gated API)
//   - market: daily market quote bars (key-gated API)
//
// Connectors share a retry/backoff/ratelimit helper in this package. When a
// key is absent or the retry budget is exhausted, each connector degrades to
// its deterministic synthetic generator and marks the output degraded; the
// flag travels to the snapshot and to insight reporting, never silently.
package connectors
