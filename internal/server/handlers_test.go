package server

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"example.com/mavgate/internal/dialect"
	"example.com/mavgate/internal/dialects"
	"example.com/mavgate/internal/rules"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	srv, err := NewServer(Options{
		StorageDir: t.TempDir(),
		Dialects: map[string]*dialect.Dialect{
			"common":  dialects.Common(),
			"minimal": dialects.Minimal(),
		},
		DefaultDialect: "common",
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv, NewRouter(srv)
}

func sampleCapture(t *testing.T) []byte {
	t.Helper()
	engine := dialect.NewEngine(dialects.Common())
	var capture []byte
	for seq := uint8(0); seq < 3; seq++ {
		raw, err := engine.Serialize(dialect.OutgoingMessage{
			Name:     "HEARTBEAT",
			Payload:  map[string]any{"type": uint8(2), "system_status": uint8(4)},
			Sequence: seq,
			Protocol: 1,
		})
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		capture = append(capture, raw...)
	}
	return capture
}

func TestDecodeEndpointStreamsNDJSON(t *testing.T) {
	_, router := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/decode", bytes.NewReader(sampleCapture(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Fatalf("content type = %q", ct)
	}

	var lines []string
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 4 {
		t.Fatalf("got %d NDJSON lines, want 3 messages + summary", len(lines))
	}
	var first dialect.ParsedMessage
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("parse first line: %v", err)
	}
	if first.Name != "HEARTBEAT" || !first.CRCOK {
		t.Fatalf("first message = %+v", first)
	}
	var summary struct {
		Report rules.LinkReport `json:"report"`
	}
	if err := json.Unmarshal([]byte(lines[3]), &summary); err != nil {
		t.Fatalf("parse summary: %v", err)
	}
	if summary.Report.Stats.Messages != 3 {
		t.Fatalf("summary stats = %+v", summary.Report.Stats)
	}
	if !summary.Report.Summary.Pass {
		t.Fatalf("clean capture did not pass: %+v", summary.Report)
	}
}

func TestDecodeEndpointRejectsBadRequests(t *testing.T) {
	_, router := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/decode", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/decode", bytes.NewReader(nil)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/decode?dialect=nope", bytes.NewReader([]byte{1})))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown dialect status = %d", rec.Code)
	}
}

func TestSerializeEndpointRoundTrip(t *testing.T) {
	_, router := newTestServer(t)
	body := `{"message_name":"HEARTBEAT","payload":{"custom_mode":12345},"sequence":42,"protocol_version":1}`
	req := httptest.NewRequest(http.MethodPost, "/serialize", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Name   string `json:"message_name"`
		Length int    `json:"length"`
		Frame  string `json:"frame_hex"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	raw, err := hex.DecodeString(resp.Frame)
	if err != nil {
		t.Fatalf("frame not hex: %v", err)
	}
	if len(raw) != resp.Length || resp.Length != 17 {
		t.Fatalf("frame length = %d/%d, want 17", len(raw), resp.Length)
	}
	engine := dialect.NewEngine(dialects.Common())
	parsed := engine.ParseBytes(raw)
	if len(parsed) != 1 || parsed[0].Payload["custom_mode"] != uint32(12345) {
		t.Fatalf("parsed = %+v", parsed)
	}
}

func TestSerializeEndpointUnknownMessage(t *testing.T) {
	_, router := newTestServer(t)
	body := `{"message_name":"NOPE","payload":{}}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/serialize", strings.NewReader(body)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDialectsEndpoint(t *testing.T) {
	_, router := newTestServer(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dialects", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Dialects []struct {
			Key      string `json:"key"`
			Default  bool   `json:"default"`
			Messages []struct {
				Name        string `json:"name"`
				PayloadSize int    `json:"payloadSize"`
			} `json:"messages"`
		} `json:"dialects"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Dialects) != 2 {
		t.Fatalf("dialects = %d, want 2", len(resp.Dialects))
	}
	for _, d := range resp.Dialects {
		if d.Key == "common" {
			if !d.Default {
				t.Fatalf("common not marked default")
			}
			if len(d.Messages) == 0 {
				t.Fatalf("common has no messages")
			}
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, router := newTestServer(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestArtifactDownloadUnknownID(t *testing.T) {
	_, router := newTestServer(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/artifacts/doesnotexist", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestNewServerValidatesOptions(t *testing.T) {
	if _, err := NewServer(Options{StorageDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error without dialects")
	}
	_, err := NewServer(Options{
		StorageDir:     t.TempDir(),
		Dialects:       map[string]*dialect.Dialect{"common": dialects.Common()},
		DefaultDialect: "missing",
	})
	if err == nil {
		t.Fatalf("expected error for unknown default dialect")
	}
}
