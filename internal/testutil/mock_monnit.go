// Package testutil provides testing utilities for the Monnit export tool.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockMonnit is a configurable mock imonnit.com server for testing. It
// serves the NetworkList, SensorList and SensorDataMessages endpoints and
// tracks the requests it receives.
type MockMonnit struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	Requests     []string
}

// NewMockMonnit creates a new mock Monnit server.
func NewMockMonnit() *MockMonnit {
	mock := &MockMonnit{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := endpointMethod(r.URL.Path)

		mock.mu.Lock()
		mock.RequestCount++
		mock.Requests = append(mock.Requests, method+"?"+r.URL.RawQuery)
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[method]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r, method)
	}))

	return mock
}

// endpointMethod extracts the API method name from /json/<Method>/<token>.
func endpointMethod(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "json" {
		return parts[1]
	}
	return path
}

// URL returns the mock server URL.
func (m *MockMonnit) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockMonnit) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockMonnit) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
}

// SetHandler sets a custom handler for an API method (e.g. "SensorList").
func (m *MockMonnit) SetHandler(method string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method] = handler
}

// RespondJSON sets a fixed envelope response for an API method. The body
// is the JSON value of the Result element.
func (m *MockMonnit) RespondJSON(method string, result string) {
	m.SetHandler(method, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"Method":%q,"Result":%s}`, method, result)
	})
}

// RespondStatus sets a fixed HTTP error status for an API method.
func (m *MockMonnit) RespondStatus(method string, statusCode int) {
	m.SetHandler(method, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(statusCode)
	})
}

// defaultHandler returns an empty Result for known methods and 404 otherwise.
func (m *MockMonnit) defaultHandler(w http.ResponseWriter, _ *http.Request, method string) {
	switch method {
	case "NetworkList", "SensorList", "SensorDataMessages":
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"Method":%q,"Result":[]}`, method)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
