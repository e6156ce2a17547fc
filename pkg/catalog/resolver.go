// Package catalog resolves a human-readable network name to its opaque
// network id and that id to the sensors it contains.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vinckbooms/20231212-monnit-api/pkg/monnit"
)

// ErrNetworkNotFound is returned when no network matches the requested name.
var ErrNetworkNotFound = errors.New("network not found")

// CatalogClient is the subset of the API client the resolver needs.
type CatalogClient interface {
	NetworkList(ctx context.Context) ([]monnit.Network, error)
	SensorList(ctx context.Context, networkID int64) ([]monnit.Sensor, error)
}

// ResolveNetworkID finds the id of the network with the given name.
// Exact match; when duplicates exist the first in provider-returned order
// wins.
func ResolveNetworkID(networks []monnit.Network, name string) (int64, error) {
	for _, network := range networks {
		if network.NetworkName == name {
			return network.NetworkID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrNetworkNotFound, name)
}

// Resolver looks up sensors through the live catalog.
type Resolver struct {
	client CatalogClient
	logger zerolog.Logger
}

// NewResolver creates a resolver backed by the given client.
func NewResolver(client CatalogClient) *Resolver {
	return &Resolver{
		client: client,
		logger: log.With().Str("component", "catalog").Logger(),
	}
}

// SensorIDs lists the sensor ids of one network.
func (r *Resolver) SensorIDs(ctx context.Context, networkID int64) ([]int64, error) {
	sensors, err := r.client.SensorList(ctx, networkID)
	if err != nil {
		return nil, fmt.Errorf("list sensors for network %d: %w", networkID, err)
	}

	ids := make([]int64, 0, len(sensors))
	for _, sensor := range sensors {
		ids = append(ids, sensor.SensorID)
	}
	return ids, nil
}

// SensorIDsForNetwork resolves a network name end to end: network list,
// name lookup, sensor list. Any failure surfaces to the caller, which
// decides whether to fall back to a statically configured sensor list.
func (r *Resolver) SensorIDsForNetwork(ctx context.Context, name string) ([]int64, error) {
	networks, err := r.client.NetworkList(ctx)
	if err != nil {
		return nil, fmt.Errorf("list networks: %w", err)
	}

	networkID, err := ResolveNetworkID(networks, name)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("network", name).
		Int64("network_id", networkID).
		Msg("Resolved network id")

	return r.SensorIDs(ctx, networkID)
}
