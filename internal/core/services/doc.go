// Package services contains the core pipeline logic, implementing the
// driving ports against the driven ports. Services depend only on domain
// types and port interfaces; adapters are wired in by the CLI layer.
package services
