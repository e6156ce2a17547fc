package monnit

import "encoding/json"

// DateFormat is the timestamp layout the API accepts for date parameters
// and the layout used in exported artifacts.
const DateFormat = "2006-01-02 15:04:05"

// Network describes one sensor network as returned by NetworkList.
// Only the fields needed for name resolution are kept; the descriptor is
// discarded once the network id is known.
type Network struct {
	NetworkID   int64  `json:"NetworkID"`
	NetworkName string `json:"NetworkName"`
}

// Sensor describes one sensor as returned by SensorList.
type Sensor struct {
	SensorID   int64  `json:"SensorID"`
	SensorName string `json:"SensorName"`
}

// DataMessage is a single measurement row from SensorDataMessages. The
// provider's value fields are kept verbatim: rows are decoded into a field
// map (numbers as json.Number) and serialized straight to CSV without an
// intermediate schema.
type DataMessage map[string]any

// MessageDateField is the row field carrying the measurement timestamp in
// the provider's /Date(ms)/ encoding.
const MessageDateField = "MessageDate"

// envelope is the JSON wrapper common to all imonnit.com responses.
type envelope struct {
	Method string          `json:"Method"`
	Result json.RawMessage `json:"Result"`
}
