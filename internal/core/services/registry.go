package services

import (
	"github.com/artisnova/aria/internal/core/domain"
	"github.com/artisnova/aria/internal/core/ports/driven"
	"github.com/artisnova/aria/internal/core/ports/driving"
)

// Ensure ConnectorRegistry implements the interface.
var _ driving.ConnectorRegistry = (*ConnectorRegistry)(nil)

// ConnectorRegistry holds the configured catalog connectors.
// Registration happens once at startup; lookups are read-only after that.
type ConnectorRegistry struct {
	connectors []driven.Connector
}

// NewConnectorRegistry creates a registry over the given connectors.
func NewConnectorRegistry(connectors ...driven.Connector) *ConnectorRegistry {
	return &ConnectorRegistry{connectors: connectors}
}

// ConnectorsFor returns the connectors able to answer queries for the
// entity type. Used by the aggregator's fan-out.
func (r *ConnectorRegistry) ConnectorsFor(t domain.EntityType) []driven.Connector {
	var out []driven.Connector
	for _, c := range r.connectors {
		if c.Capabilities().SupportsType(t) {
			out = append(out, c)
		}
	}
	return out
}

// ForType returns display information for the connectors supporting the type.
func (r *ConnectorRegistry) ForType(t domain.EntityType) []driving.RegisteredConnector {
	connectors := r.ConnectorsFor(t)
	out := make([]driving.RegisteredConnector, 0, len(connectors))
	for _, c := range connectors {
		out = append(out, driving.RegisteredConnector{
			Name:              c.Name(),
			ReliabilityWeight: c.ReliabilityWeight(),
		})
	}
	return out
}

// Names lists all registered catalog names.
func (r *ConnectorRegistry) Names() []string {
	names := make([]string, 0, len(r.connectors))
	for _, c := range r.connectors {
		names = append(names, c.Name())
	}
	return names
}

// Close closes every registered connector.
func (r *ConnectorRegistry) Close() error {
	var firstErr error
	for _, c := range r.connectors {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
