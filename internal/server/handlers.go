package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"example.com/mavgate/internal/dialect"
	"example.com/mavgate/internal/report"
	"example.com/mavgate/internal/rules"
)

const maxStreamBytes = 64 << 20

// ndjsonWriter streams one JSON object per line, flushing after each record
// so clients see messages while the rest of the capture still decodes.
// json.Encoder terminates every record with the newline NDJSON needs.
type ndjsonWriter struct {
	enc     *json.Encoder
	flusher http.Flusher
}

func newNDJSONWriter(w http.ResponseWriter) *ndjsonWriter {
	f, _ := w.(http.Flusher)
	return &ndjsonWriter{enc: json.NewEncoder(w), flusher: f}
}

func (w *ndjsonWriter) write(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return err
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}

// handleDecode accepts a raw capture in the request body, parses it with the
// selected dialect and streams one NDJSON record per decoded message. The
// final record summarizes the stream with a link report and, when requested
// via ?report=pdf, references a downloadable PDF artifact.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	d, err := s.dialectFor(r.URL.Query().Get("dialect"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxStreamBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("read body: %v", err), http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty body", http.StatusBadRequest)
		return
	}

	engine := dialect.NewEngine(d)
	messages := engine.ParseBytes(data)

	ruleEngine := rules.NewEngine(rules.DefaultPack())
	ruleEngine.RegisterBuiltins()
	ctx := &rules.Context{Dialect: d.Name(), Messages: messages}
	if _, err := ruleEngine.Eval(ctx); err != nil {
		http.Error(w, fmt.Sprintf("evaluate rules: %v", err), http.StatusInternalServerError)
		return
	}
	linkReport := ruleEngine.MakeLinkReport()

	w.Header().Set("Content-Type", "application/x-ndjson")
	out := newNDJSONWriter(w)
	for _, msg := range messages {
		if err := out.write(msg); err != nil {
			return
		}
	}

	summary := struct {
		Report   rules.LinkReport `json:"report"`
		Artifact *ArtifactRef     `json:"artifact,omitempty"`
	}{Report: linkReport}

	if r.URL.Query().Get("report") == "pdf" {
		pdfPath, err := s.tempPath("report-*.pdf")
		if err == nil {
			if err := report.SaveLinkReportPDF(linkReport, "", pdfPath); err == nil {
				// Content type is inferred from the artifact name.
				if art, err := s.addArtifact(pdfPath, "link-report.pdf", "", "report"); err == nil {
					ref := toRef(art)
					summary.Artifact = &ref
				}
			}
		}
	}
	_ = out.write(summary)
}

// handleSerialize turns a JSON message into wire bytes, returned hex-encoded.
func (s *Server) handleSerialize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	d, err := s.dialectFor(r.URL.Query().Get("dialect"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var msg dialect.OutgoingMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, fmt.Sprintf("decode message: %v", err), http.StatusBadRequest)
		return
	}
	engine := dialect.NewEngine(d)
	frame, err := engine.Serialize(msg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Name   string `json:"message_name"`
		Length int    `json:"length"`
		Frame  string `json:"frame_hex"`
	}{Name: msg.Name, Length: len(frame), Frame: hex.EncodeToString(frame)})
}

// handleDialects lists the configured catalogs and their messages.
func (s *Server) handleDialects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type messageInfo struct {
		ID          uint32 `json:"id"`
		Name        string `json:"name"`
		PayloadSize int    `json:"payloadSize"`
		CoreSize    int    `json:"coreSize"`
	}
	type dialectInfo struct {
		Key      string        `json:"key"`
		Name     string        `json:"name"`
		Default  bool          `json:"default"`
		Messages []messageInfo `json:"messages"`
	}
	var out []dialectInfo
	for key, d := range s.dialects {
		info := dialectInfo{Key: key, Name: d.Name(), Default: key == s.defaultKey}
		for _, id := range d.IDs() {
			def, _ := d.MessageByID(id)
			info.Messages = append(info.Messages, messageInfo{
				ID:          def.ID,
				Name:        def.Name,
				PayloadSize: def.PayloadSize(),
				CoreSize:    def.CorePayloadSize(),
			})
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, struct {
		Dialects []dialectInfo `json:"dialects"`
	}{Dialects: out})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

// handleArtifactDownload serves previously generated artifacts by id.
func (s *Server) handleArtifactDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(path.Clean(r.URL.Path), "/artifacts/")
	art, ok := s.artifacts.get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if art.ContentType != "" {
		w.Header().Set("Content-Type", art.ContentType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Name))
	http.ServeFile(w, r, art.Path)
}
