// Package driving defines the inbound ports of the metadata engine:
// the service interfaces the HTTP API and CLI adapters call.
package driving
