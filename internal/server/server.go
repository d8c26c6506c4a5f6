package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"example.com/mavgate/internal/dialect"
)

// Server coordinates HTTP handlers and manages temporary artifacts produced
// by decode requests.
type Server struct {
	dialects   map[string]*dialect.Dialect
	defaultKey string
	artifacts  *ArtifactStore
	workDir    string
}

// Options configures server creation.
type Options struct {
	StorageDir string
	// Dialects maps a selection key to its catalog. DefaultDialect names the
	// catalog used when a request does not pick one.
	Dialects       map[string]*dialect.Dialect
	DefaultDialect string
}

// Artifact represents a file generated or stored by the daemon.
type Artifact struct {
	ID          string
	Path        string
	Name        string
	ContentType string
	Size        int64
	Kind        string
}

// ArtifactRef is the public representation returned in API responses.
type ArtifactRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// ArtifactStore keeps track of generated artifacts for later download.
type ArtifactStore struct {
	mu      sync.RWMutex
	entries map[string]Artifact
}

func (a *ArtifactStore) add(art Artifact) {
	a.mu.Lock()
	a.entries[art.ID] = art
	a.mu.Unlock()
}

func (a *ArtifactStore) get(id string) (Artifact, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	art, ok := a.entries[id]
	return art, ok
}

// NewServer constructs a Server rooted at a temporary workspace directory.
func NewServer(opts Options) (*Server, error) {
	if len(opts.Dialects) == 0 {
		return nil, errors.New("no dialects configured")
	}
	defaultKey := opts.DefaultDialect
	if defaultKey == "" {
		keys := make([]string, 0, len(opts.Dialects))
		for k := range opts.Dialects {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		defaultKey = keys[0]
	}
	if _, ok := opts.Dialects[defaultKey]; !ok {
		return nil, fmt.Errorf("default dialect %q not configured", defaultKey)
	}
	storageDir := opts.StorageDir
	if storageDir == "" {
		storageDir = os.TempDir()
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, err
	}
	workDir, err := os.MkdirTemp(storageDir, "mavd-")
	if err != nil {
		return nil, err
	}
	return &Server{
		dialects:   opts.Dialects,
		defaultKey: defaultKey,
		artifacts:  &ArtifactStore{entries: make(map[string]Artifact)},
		workDir:    workDir,
	}, nil
}

// Close removes any temporary state associated with the server.
func (s *Server) Close() error {
	if s == nil || s.workDir == "" {
		return nil
	}
	return os.RemoveAll(s.workDir)
}

func (s *Server) addArtifact(path, displayName, contentType, kind string) (Artifact, error) {
	if path == "" {
		return Artifact{}, errors.New("empty path")
	}
	if contentType == "" {
		contentType = guessContentType(displayName)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, err
	}
	art := Artifact{
		ID:          randomID(),
		Path:        path,
		Name:        displayName,
		ContentType: contentType,
		Size:        info.Size(),
		Kind:        kind,
	}
	s.artifacts.add(art)
	return art, nil
}

func (s *Server) tempPath(pattern string) (string, error) {
	f, err := os.CreateTemp(s.workDir, pattern)
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}

func (s *Server) dialectFor(key string) (*dialect.Dialect, error) {
	if key == "" {
		key = s.defaultKey
	}
	d, ok := s.dialects[key]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q", key)
	}
	return d, nil
}

func toRef(art Artifact) ArtifactRef {
	return ArtifactRef{
		ID:          art.ID,
		Name:        art.Name,
		ContentType: art.ContentType,
		Size:        art.Size,
		Kind:        art.Kind,
	}
}

func randomID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "artifact"
	}
	return hex.EncodeToString(buf)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func guessContentType(name string) string {
	switch filepath.Ext(name) {
	case ".json":
		return "application/json"
	case ".pdf":
		return "application/pdf"
	case ".ndjson", ".jsonl":
		return "application/x-ndjson"
	default:
		return "application/octet-stream"
	}
}
