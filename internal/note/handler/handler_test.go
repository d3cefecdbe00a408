package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gonotes/notes-service/internal/note/service"
	"github.com/gonotes/notes-service/internal/storage"
	"github.com/gonotes/notes-service/internal/tokens"
	"github.com/stretchr/testify/require"
)

const token = "test_token"

func newRouter(t *testing.T, records storage.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := tokens.NewRepository(storage.NewMemoryStore(), "tokens")
	_, err := auth.EnsureDefault(context.Background(), "user", token)
	require.NoError(t, err)

	g := gin.New()
	RegisterNoteRoutes(g, service.New(records, auth, nil))
	return g
}

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestNoteHandler_Scenario(t *testing.T) {
	g := newRouter(t, storage.NewMemoryStore())

	// create
	w := do(g, http.MethodPost, "/notes/create?token="+token, `{"text":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w)["id"]
	require.NotEmpty(t, id)

	// get content
	w = do(g, http.MethodGet, "/notes/"+id+"?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]string{"id": id, "text": "hello"}, decode(t, w))

	// update
	w = do(g, http.MethodPatch, "/notes/update/"+id+"?token="+token, `{"text":"world"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Note updated successfully", decode(t, w)["message"])

	w = do(g, http.MethodGet, "/notes/"+id+"?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "world", decode(t, w)["text"])

	// delete
	w = do(g, http.MethodDelete, "/notes/delete/"+id+"?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Note deleted successfully", decode(t, w)["message"])

	w = do(g, http.MethodGet, "/notes/"+id+"?token="+token, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Note not found", decode(t, w)["detail"])
}

func TestNoteHandler_Info(t *testing.T) {
	g := newRouter(t, storage.NewMemoryStore())
	w := do(g, http.MethodPost, "/notes/create?token="+token, `{"text":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w)["id"]

	w = do(g, http.MethodGet, "/notes/info/"+id+"?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	info := decode(t, w)
	require.Len(t, info, 2)
	created, err := time.Parse(time.RFC3339Nano, info["created_at"])
	require.NoError(t, err)
	updated, err := time.Parse(time.RFC3339Nano, info["updated_at"])
	require.NoError(t, err)
	require.True(t, created.Equal(updated))
	require.True(t, strings.HasSuffix(info["created_at"], "Z"), "timestamps are UTC")

	w = do(g, http.MethodPatch, "/notes/update/"+id+"?token="+token, `{"text":"y"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(g, http.MethodGet, "/notes/info/"+id+"?token="+token, "")
	info2 := decode(t, w)
	require.Equal(t, info["created_at"], info2["created_at"])
	updated2, err := time.Parse(time.RFC3339Nano, info2["updated_at"])
	require.NoError(t, err)
	require.True(t, updated2.After(created))
}

func TestNoteHandler_List(t *testing.T) {
	g := newRouter(t, storage.NewMemoryStore())

	w := do(g, http.MethodGet, "/notes/list?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{}`, w.Body.String())

	ids := map[string]bool{}
	for _, text := range []string{"a", "b", "c"} {
		w = do(g, http.MethodPost, "/notes/create?token="+token, `{"text":"`+text+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
		ids[decode(t, w)["id"]] = true
	}

	w = do(g, http.MethodGet, "/notes/list?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	require.Len(t, list, 3)
	for _, k := range []string{"0", "1", "2"} {
		require.True(t, ids[list[k]], "key %s maps to unknown id %q", k, list[k])
	}
}

func TestNoteHandler_NotFound(t *testing.T) {
	g := newRouter(t, storage.NewMemoryStore())
	missing := "00000000-0000-4000-8000-000000000000"

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/notes/" + missing, ""},
		{http.MethodGet, "/notes/info/" + missing, ""},
		{http.MethodPatch, "/notes/update/" + missing, `{"text":"x"}`},
		{http.MethodDelete, "/notes/delete/" + missing, ""},
	} {
		w := do(g, tc.method, tc.path+"?token="+token, tc.body)
		require.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
		require.Equal(t, "Note not found", decode(t, w)["detail"])
	}
}

func TestNoteHandler_Unauthorized(t *testing.T) {
	g := newRouter(t, storage.NewMemoryStore())
	w := do(g, http.MethodPost, "/notes/create?token="+token, `{"text":"x"}`)
	id := decode(t, w)["id"]

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/notes/create", `{"text":"x"}`},
		{http.MethodGet, "/notes/" + id, ""},
		{http.MethodGet, "/notes/info/" + id, ""},
		{http.MethodPatch, "/notes/update/" + id, `{"text":"x"}`},
		{http.MethodDelete, "/notes/delete/" + id, ""},
		{http.MethodGet, "/notes/list", ""},
	} {
		w := do(g, tc.method, tc.path+"?token=wrong", tc.body)
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
		require.Equal(t, "Invalid token", decode(t, w)["detail"])
	}

	// the note survived the rejected update and delete
	w = do(g, http.MethodGet, "/notes/"+id+"?token="+token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "x", decode(t, w)["text"])
}

func TestNoteHandler_NoTokenSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	auth := tokens.NewRepository(storage.NewMemoryStore(), "tokens")
	RegisterNoteRoutes(g, service.New(storage.NewMemoryStore(), auth, nil))

	w := do(g, http.MethodGet, "/notes/list?token="+token, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Unauthorized", decode(t, w)["detail"])
}

func TestNoteHandler_Validation(t *testing.T) {
	g := newRouter(t, storage.NewMemoryStore())

	w := do(g, http.MethodGet, "/notes/list", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/notes/create", `{"body":"x"}`},
		{http.MethodPost, "/notes/create", `not json`},
		{http.MethodPost, "/notes/create", `{"text":123}`},
		{http.MethodPatch, "/notes/update/00000000-0000-4000-8000-000000000000", `{}`},
	} {
		w = do(g, tc.method, tc.path+"?token="+token, tc.body)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, tc.body)
		require.Equal(t, map[string]string{"detail": MsgTextRequired}, decode(t, w))
		require.NotContains(t, w.Body.String(), "textRequest")
	}

	// empty text is a valid note
	w = do(g, http.MethodPost, "/notes/create?token="+token, `{"text":""}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestNoteHandler_FileBackedRecords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notes")
	fs, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	g := newRouter(t, fs)

	w := do(g, http.MethodPost, "/notes/create?token="+token, `{"text":"on disk"}`)
	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w)["id"]

	b, err := os.ReadFile(filepath.Join(dir, id+".json"))
	require.NoError(t, err)
	var rec map[string]string
	require.NoError(t, json.Unmarshal(b, &rec))
	require.Equal(t, id, rec["id"])
	require.Equal(t, "on disk", rec["text"])
	require.NotEmpty(t, rec["created_at"])
	require.Equal(t, rec["created_at"], rec["updated_at"])

	// a corrupted record is a server fault, not a 404
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), []byte("{oops"), 0o644))
	w = do(g, http.MethodGet, "/notes/"+id+"?token="+token, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "internal error", decode(t, w)["detail"])
}
