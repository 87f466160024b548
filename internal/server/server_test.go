package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/convgraph/internal/config"
	"github.com/matzehuels/convgraph/internal/engine"
	"github.com/matzehuels/convgraph/pkg/cache"
	"github.com/matzehuels/convgraph/pkg/conversion"
	"github.com/matzehuels/convgraph/pkg/errors"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	e, err := engine.New(config.Default(), logger)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(New(e, cache.NewNullCache(), logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, params url.Values) *http.Response {
	t.Helper()
	u := ts.URL + path
	if params != nil {
		u += "?" + params.Encode()
	}
	resp, err := http.Get(u)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[healthResponse](t, resp)
	if body.Status != "ok" || body.Registry == "" {
		t.Errorf("health = %+v", body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("response has no request id")
	}
}

func TestRequestIDReused(t *testing.T) {
	ts := newTestServer(t)
	const id = "5b0e2a7c-7d4e-4f57-9c8e-2a35c8d3f0a1"

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("invalid request id was not replaced: %q", got)
	}
}

func TestTypes(t *testing.T) {
	ts := newTestServer(t)
	types := decode[[]typeEntry](t, get(t, ts, "/types", nil))

	found := false
	for _, e := range types {
		if e.Name == "time.Duration" {
			found = e.Type == "time.Duration" && e.Kind == "int64"
		}
	}
	if !found {
		t.Errorf("time.Duration missing or wrong in %v", types)
	}
}

func TestFind(t *testing.T) {
	ts := newTestServer(t)

	resp := get(t, ts, "/find", url.Values{"from": {"int"}, "to": {"string"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[findResponse](t, resp)
	if body.Output != "string" || body.Converter == "" {
		t.Errorf("find = %+v", body)
	}
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		params url.Values
		status int
		code   errors.Code
	}{
		{"missing param", "/find", url.Values{"to": {"int"}}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown type", "/find", url.Values{"from": {"widget"}, "to": {"int"}}, http.StatusNotFound, errors.ErrCodeTypeNotFound},
		{"no converter", "/find", url.Values{"from": {"int"}, "to": {"complex64"}}, http.StatusNotFound, errors.ErrCodeNoConverter},
		{"failed conversion", "/convert", url.Values{"value": {`"x"`}, "from": {"string"}, "to": {"int"}}, http.StatusUnprocessableEntity, errors.ErrCodeConversionFailed},
		{"no route", "/nope", nil, http.StatusNotFound, errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts, tt.path, tt.params)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decode[errorResponse](t, resp)
			if body.Error.Code != tt.code || body.RequestID == "" {
				t.Errorf("error body = %+v", body)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/convert", url.Values{"value": {`["1", 2]`}, "to": {"[]int"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[engine.Result](t, resp)
	values, ok := body.Value.([]any)
	if !ok || len(values) != 2 || values[0] != 1.0 || values[1] != 2.0 {
		t.Errorf("convert = %+v", body)
	}
}

func TestTree(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/tree", url.Values{"from": {"int"}, "to": {"string"}})
	body := decode[struct {
		Found bool                      `json:"found"`
		Nodes []conversion.SnapshotNode `json:"nodes"`
		Text  string                    `json:"text"`
	}](t, resp)

	if !body.Found || len(body.Nodes) == 0 {
		t.Fatalf("tree = %+v", body)
	}
	if body.Nodes[0].Parent != -1 || body.Nodes[0].TypeName != "string" {
		t.Errorf("root = %+v", body.Nodes[0])
	}
	if !strings.Contains(body.Text, ">>int<<") {
		t.Errorf("text does not mark the path:\n%s", body.Text)
	}
}

func TestGraphDOT(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/graph.dot", url.Values{"from": {"int"}, "to": {"string"}, "detailed": {"true"}})
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("content type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("body = %s", data)
	}
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)
	get(t, ts, "/find", url.Values{"from": {"int"}, "to": {"string"}})

	stats := decode[conversion.Stats](t, get(t, ts, "/stats", nil))
	if stats.Converters == 0 || stats.CachedPairs == 0 {
		t.Errorf("stats = %+v", stats)
	}
}
