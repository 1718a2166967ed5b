// Package driven defines the outbound ports of the pipeline core: connectors
// that fetch from upstream sources, stores that persist snapshots, artifacts
// and run history, the model registry, and the candidate algorithm contract.
// Adapters implement these interfaces.
package driven
