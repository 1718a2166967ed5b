// Package driving defines the inbound ports of the pipeline core: the
// operations an external serving layer or CLI invokes. The dashboard UI and
// HTTP plumbing live outside this repository and call these interfaces.
package driving
