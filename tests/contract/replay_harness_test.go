//go:build contract

package contract

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"

	"todocontract/internal/todoclient"
)

const replayBaseURL = "https://replay.local"

type replayRoute struct {
	statusCode  int
	contentType string
	body        []byte
}

type replayTransport struct {
	t      *testing.T
	routes map[string]replayRoute

	mu   sync.Mutex
	seen []string
}

func replayKey(method, requestURI string) string {
	return method + " " + requestURI
}

func (rt *replayTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt.t.Helper()

	key := replayKey(req.Method, req.URL.RequestURI())
	rt.mu.Lock()
	rt.seen = append(rt.seen, key)
	rt.mu.Unlock()

	route, ok := rt.routes[key]
	if !ok {
		notFoundBody := []byte(fmt.Sprintf(`{"detail":"missing replay route: %s"}`, key))
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
			Header: http.Header{
				"Content-Type": []string{"application/json"},
			},
			Body:    io.NopCloser(bytes.NewReader(notFoundBody)),
			Request: req,
		}, nil
	}

	statusCode := route.statusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	contentType := route.contentType
	if contentType == "" {
		contentType = "application/json"
	}

	return &http.Response{
		StatusCode: statusCode,
		Status:     fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		Header: http.Header{
			"Content-Type": []string{contentType},
		},
		Body:    io.NopCloser(bytes.NewReader(route.body)),
		Request: req,
	}, nil
}

// requests returns the replay keys in the order they were requested
func (rt *replayTransport) requests() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]string(nil), rt.seen...)
}

func newReplayClient(t *testing.T, routes map[string]replayRoute) (*todoclient.Client, *replayTransport) {
	t.Helper()
	transport := &replayTransport{
		t:      t,
		routes: routes,
	}
	client := todoclient.NewWithHTTPClient(replayBaseURL, &http.Client{Transport: transport}, todoclient.Hooks{})
	return client, transport
}

func jsonFixtureRoute(t *testing.T, path string) replayRoute {
	t.Helper()
	return jsonFixtureRouteWithStatus(t, path, http.StatusOK)
}

func jsonFixtureRouteWithStatus(t *testing.T, path string, statusCode int) replayRoute {
	t.Helper()
	return replayRoute{
		statusCode:  statusCode,
		contentType: "application/json",
		body:        loadGoldenFileRaw(t, path),
	}
}
