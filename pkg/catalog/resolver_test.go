package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/vinckbooms/20231212-monnit-api/pkg/monnit"
)

func TestResolveNetworkID(t *testing.T) {
	networks := []monnit.Network{
		{NetworkID: 1, NetworkName: "X"},
		{NetworkID: 2, NetworkName: "Y"},
		{NetworkID: 3, NetworkName: "Y"},
	}

	tests := []struct {
		name    string
		lookup  string
		wantID  int64
		wantErr bool
	}{
		{
			name:   "existing name",
			lookup: "Y",
			wantID: 2, // first match wins on duplicates
		},
		{
			name:   "first entry",
			lookup: "X",
			wantID: 1,
		},
		{
			name:    "unknown name",
			lookup:  "Z",
			wantErr: true,
		},
		{
			name:    "case sensitive",
			lookup:  "y",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ResolveNetworkID(networks, tt.lookup)
			if tt.wantErr {
				if !errors.Is(err, ErrNetworkNotFound) {
					t.Errorf("err = %v, want ErrNetworkNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveNetworkID: %v", err)
			}
			if id != tt.wantID {
				t.Errorf("id = %d, want %d", id, tt.wantID)
			}
		})
	}
}

type fakeCatalogClient struct {
	networks    []monnit.Network
	sensors     map[int64][]monnit.Sensor
	networksErr error
	sensorsErr  error
}

func (f *fakeCatalogClient) NetworkList(_ context.Context) ([]monnit.Network, error) {
	return f.networks, f.networksErr
}

func (f *fakeCatalogClient) SensorList(_ context.Context, networkID int64) ([]monnit.Sensor, error) {
	return f.sensors[networkID], f.sensorsErr
}

func TestResolver_SensorIDsForNetwork(t *testing.T) {
	client := &fakeCatalogClient{
		networks: []monnit.Network{
			{NetworkID: 10, NetworkName: "Labo-GBZ"},
		},
		sensors: map[int64][]monnit.Sensor{
			10: {
				{SensorID: 345749, SensorName: "Temp 1"},
				{SensorID: 345750, SensorName: "Temp 2"},
			},
		},
	}

	resolver := NewResolver(client)

	ids, err := resolver.SensorIDsForNetwork(context.Background(), "Labo-GBZ")
	if err != nil {
		t.Fatalf("SensorIDsForNetwork: %v", err)
	}

	want := []int64{345749, 345750}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestResolver_SensorIDsForNetwork_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeCatalogClient
		lookup string
		wantIs error
	}{
		{
			name: "unknown network",
			client: &fakeCatalogClient{
				networks: []monnit.Network{{NetworkID: 1, NetworkName: "Other"}},
			},
			lookup: "Labo-GBZ",
			wantIs: ErrNetworkNotFound,
		},
		{
			name: "network list failure",
			client: &fakeCatalogClient{
				networksErr: errors.New("boom"),
			},
			lookup: "Labo-GBZ",
		},
		{
			name: "sensor list failure",
			client: &fakeCatalogClient{
				networks:   []monnit.Network{{NetworkID: 1, NetworkName: "Labo-GBZ"}},
				sensorsErr: errors.New("boom"),
			},
			lookup: "Labo-GBZ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(tt.client)
			_, err := resolver.SensorIDsForNetwork(context.Background(), tt.lookup)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("err = %v, want %v", err, tt.wantIs)
			}
		})
	}
}
