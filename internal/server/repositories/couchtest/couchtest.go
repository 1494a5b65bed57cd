// Package couchtest runs a small in-process CouchDB look-alike that speaks
// enough of the HTTP API (documents, _find, _index) for repository tests.
package couchtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb"
)

// Server is an in-memory CouchDB stand-in.
type Server struct {
	*httptest.Server

	mu   sync.Mutex
	dbs  map[string]map[string]map[string]any
	revs int

	failNext int
	finds    int
}

// NewServer starts a fake and registers its shutdown with t.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{dbs: make(map[string]map[string]map[string]any)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// NewDB starts a fake, creates database name in it and returns a handle.
func NewDB(t testing.TB, name string) (*Server, *kivik.DB) {
	t.Helper()
	s := NewServer(t)

	client, err := kivik.New("couch", s.URL)
	if err != nil {
		t.Fatalf("kivik.New: %v", err)
	}
	if err := client.CreateDB(context.Background(), name); err != nil {
		t.Fatalf("CreateDB: %v", err)
	}
	return s, client.DB(name)
}

// Doc returns a copy of a stored document, or nil.
func (s *Server) Doc(db, id string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.dbs[db][id]
	if !ok {
		return nil
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// Finds reports how many _find requests have been served.
func (s *Server) Finds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds
}

// FailNext makes the next document-level request answer with status.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = status
}

// PutRaw stores doc as-is, bypassing revision checks.
func (s *Server) PutRaw(db, id string, doc map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revs++
	doc["_id"] = id
	doc["_rev"] = fmt.Sprintf("%d-raw", s.revs)
	s.dbs[db][id] = doc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if m, ok := v.(map[string]any); ok {
		if rev, ok := m["_rev"].(string); ok {
			w.Header().Set("ETag", `"`+rev+`"`)
		}
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, reason string) {
	writeJSON(w, status, map[string]string{"error": code, "reason": reason})
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := strings.Trim(r.URL.Path, "/")
	if path == "" {
		writeJSON(w, http.StatusOK, map[string]string{"couchdb": "Welcome", "version": "3.3.3"})
		return
	}

	parts := strings.SplitN(path, "/", 2)
	dbName := parts[0]

	if len(parts) == 1 {
		s.handleDB(w, r, dbName)
		return
	}

	docs, ok := s.dbs[dbName]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "Database does not exist.")
		return
	}

	if s.failNext != 0 {
		status := s.failNext
		s.failNext = 0
		writeError(w, status, "failure", "injected")
		return
	}

	switch id := parts[1]; {
	case id == "_find" && r.Method == http.MethodPost:
		s.handleFind(w, r, docs)
	case id == "_index" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, map[string]string{"result": "created", "id": "_design/idx", "name": "idx"})
	default:
		s.handleDoc(w, r, docs, id)
	}
}

func (s *Server) handleDB(w http.ResponseWriter, r *http.Request, name string) {
	_, exists := s.dbs[name]
	switch r.Method {
	case http.MethodHead, http.MethodGet:
		if !exists {
			writeError(w, http.StatusNotFound, "not_found", "Database does not exist.")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"db_name": name})
	case http.MethodPut:
		if exists {
			writeError(w, http.StatusPreconditionFailed, "file_exists", "The database could not be created, the file already exists.")
			return
		}
		s.dbs[name] = make(map[string]map[string]any)
		writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method)
	}
}

func (s *Server) handleDoc(w http.ResponseWriter, r *http.Request, docs map[string]map[string]any, id string) {
	current, exists := docs[id]

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if !exists {
			writeError(w, http.StatusNotFound, "not_found", "missing")
			return
		}
		writeJSON(w, http.StatusOK, current)

	case http.MethodPut:
		var doc map[string]any
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		rev, _ := doc["_rev"].(string)
		if q := r.URL.Query().Get("rev"); q != "" {
			rev = q
		}
		if exists && rev != current["_rev"] {
			writeError(w, http.StatusConflict, "conflict", "Document update conflict.")
			return
		}
		if !exists && rev != "" {
			writeError(w, http.StatusConflict, "conflict", "Document update conflict.")
			return
		}
		s.revs++
		newRev := fmt.Sprintf("%d-fake", s.revs)
		doc["_id"] = id
		doc["_rev"] = newRev
		docs[id] = doc
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "id": id, "rev": newRev})

	case http.MethodDelete:
		if !exists {
			writeError(w, http.StatusNotFound, "not_found", "missing")
			return
		}
		if r.URL.Query().Get("rev") != current["_rev"] {
			writeError(w, http.StatusConflict, "conflict", "Document update conflict.")
			return
		}
		delete(docs, id)
		s.revs++
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id, "rev": fmt.Sprintf("%d-deleted", s.revs)})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method)
	}
}

// DefaultFindLimit is what CouchDB applies to _find when no limit is sent.
const DefaultFindLimit = 25

// handleFind supports selectors made of top-level equality matches, limit
// and bookmark paging. Bookmarks are the last _id of the previous page.
func (s *Server) handleFind(w http.ResponseWriter, r *http.Request, docs map[string]map[string]any) {
	var q struct {
		Selector map[string]any `json:"selector"`
		Limit    *int           `json:"limit"`
		Bookmark string         `json:"bookmark"`
	}
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.finds++

	limit := DefaultFindLimit
	if q.Limit != nil {
		limit = *q.Limit
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	matched := make([]map[string]any, 0)
	for _, id := range ids {
		if len(matched) == limit {
			break
		}
		if q.Bookmark != "" && id <= q.Bookmark {
			continue
		}
		doc := docs[id]
		ok := true
		for k, want := range q.Selector {
			if doc[k] != want {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, doc)
		}
	}

	bookmark := q.Bookmark
	if n := len(matched); n > 0 {
		bookmark, _ = matched[n-1]["_id"].(string)
	}
	writeJSON(w, http.StatusOK, map[string]any{"docs": matched, "bookmark": bookmark})
}
