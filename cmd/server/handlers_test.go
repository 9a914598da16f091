package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/himanishpuri/OsuBridge/pkg/logger"
	"github.com/himanishpuri/OsuBridge/pkg/models"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge"
	"github.com/himanishpuri/OsuBridge/pkg/osubridge/catalog"
)

const uploadMap = "osu file format v14\n" +
	"[General]\nAudioFilename: audio.mp3\nAudioLeadIn: 500\n" +
	"[Metadata]\nTitle:Uploaded\nArtist:Someone\nCreator:me\nVersion:Hard\n" +
	"[HitObjects]\n256,192,1000,1,0\n"

func setupTestServer(t *testing.T, origins ...string) http.Handler {
	t.Helper()
	svc, err := catalog.NewService(
		catalog.WithDBPath(filepath.Join(t.TempDir(), "server.sqlite3")),
		catalog.WithLogger(logger.Discard()),
		catalog.WithAudioProbe(nil),
	)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s := NewServer(svc, &ServerConfig{
		DBPath:         "test",
		AllowedOrigins: origins,
	}, logger.Discard())
	return s.setupRoutes()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("Response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return v
}

func upload(t *testing.T, h http.Handler, text string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("beatmap", "map.osu")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(text))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/beatmaps", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(t, h, req)
}

func TestHealth(t *testing.T) {
	h := setupTestServer(t)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body := decode[map[string]string](t, rec); body["status"] != "healthy" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestParseEndpoint(t *testing.T) {
	h := setupTestServer(t)

	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(uploadMap)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decode[struct {
		Error int            `json:"error"`
		Data  map[string]any `json:"data"`
	}](t, rec)
	if env.Error != osubridge.ErrorNone {
		t.Errorf("Expected error code 0, got %d", env.Error)
	}
	if env.Data["audioLeadIn"] != float64(500) || env.Data["version"] != float64(14) {
		t.Errorf("Unexpected data: %v", env.Data)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader("not a beatmap")))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", rec.Code)
	}
	bad := decode[struct {
		Error int    `json:"error"`
		Data  string `json:"data"`
	}](t, rec)
	if bad.Error != osubridge.ErrorParse || !strings.HasPrefix(bad.Data, "sad: ") {
		t.Errorf("Unexpected error envelope: %+v", bad)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/parse", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestEditEndpoint(t *testing.T) {
	h := setupTestServer(t)

	body, _ := json.Marshal(EditRequest{
		Source: uploadMap,
		Fields: map[string]any{"audioLeadIn": 0, "audioFilename": "new.ogg"},
	})
	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/api/edit", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decode[struct {
		Error int          `json:"error"`
		Data  EditResponse `json:"data"`
	}](t, rec)
	if !strings.Contains(env.Data.Source, "AudioFilename: new.ogg") || !strings.Contains(env.Data.Source, "AudioLeadIn: 0") {
		t.Errorf("Edited source missing changes:\n%s", env.Data.Source)
	}
	if env.Data.Beatmap["audioFilename"] != "new.ogg" {
		t.Errorf("Unexpected beatmap: %v", env.Data.Beatmap)
	}

	body, _ = json.Marshal(EditRequest{Source: uploadMap, Fields: map[string]any{"audioLeadIn": -5}})
	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/api/edit", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a negative lead-in, got %d", rec.Code)
	}

	body, _ = json.Marshal(EditRequest{Source: uploadMap})
	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/api/edit", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without fields, got %d", rec.Code)
	}

	body, _ = json.Marshal(EditRequest{Source: uploadMap, Fields: map[string]any{"audioFilename": "a.mp3\n[Events]"}})
	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/api/edit", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for a filename with a line break, got %d: %s", rec.Code, rec.Body.String())
	}
	bad := decode[struct {
		Error int    `json:"error"`
		Data  string `json:"data"`
	}](t, rec)
	if bad.Error != osubridge.ErrorInvalidArgs || strings.Contains(bad.Data, "osu file format") {
		t.Errorf("Unexpected error envelope: %+v", bad)
	}

	body, _ = json.Marshal(EditRequest{Source: uploadMap, Fields: map[string]any{"audioFilename": 7}})
	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/api/edit", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a numeric filename, got %d", rec.Code)
	}
}

func TestBeatmapLifecycle(t *testing.T) {
	h := setupTestServer(t)

	rec := upload(t, h, uploadMap)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	added := decode[AddBeatmapResponse](t, rec)
	if added.ID == "" || added.Skipped {
		t.Fatalf("Unexpected upload response: %+v", added)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/beatmaps/"+added.ID, nil))
	if entry := decode[models.Entry](t, rec); entry.Path != "map.osu" {
		t.Errorf("Expected entry path to be the uploaded name, got %q", entry.Path)
	}

	rec = upload(t, h, uploadMap)
	if rec.Code != http.StatusOK || !decode[AddBeatmapResponse](t, rec).Skipped {
		t.Errorf("Expected duplicate upload to be skipped, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/beatmaps", nil))
	list := decode[ListBeatmapsResponse](t, rec)
	if list.Count != 1 || list.Beatmaps[0].Title != "Uploaded" {
		t.Fatalf("Unexpected list: %+v", list)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/beatmaps/"+added.ID+"/json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for json, got %d", rec.Code)
	}
	if m := decode[map[string]any](t, rec); m["audioFilename"] != "audio.mp3" {
		t.Errorf("Unexpected model: %v", m)
	}

	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/beatmaps/"+added.ID+"/osu", nil))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "osu file format v14") {
		t.Errorf("Unexpected osu download: %d\n%s", rec.Code, rec.Body.String())
	}

	tagBody := strings.NewReader(`{"tags":["practice"]}`)
	rec = do(t, h, httptest.NewRequest(http.MethodPost, "/api/beatmaps/"+added.ID+"/tags", tagBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for tags, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/beatmaps?tag=practice", nil))
	if decode[ListBeatmapsResponse](t, rec).Count != 1 {
		t.Errorf("Expected tag filter to find the beatmap: %s", rec.Body.String())
	}

	rec = do(t, h, httptest.NewRequest(http.MethodDelete, "/api/beatmaps/"+added.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for delete, got %d", rec.Code)
	}
	rec = do(t, h, httptest.NewRequest(http.MethodGet, "/api/beatmaps/"+added.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
}

func TestBeatmapRouteErrors(t *testing.T) {
	h := setupTestServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/beatmaps/not-a-uuid", http.StatusBadRequest},
		{http.MethodGet, "/api/beatmaps/", http.StatusBadRequest},
		{http.MethodGet, "/api/beatmaps/6f1c2b7e-3f59-4f7a-9d8e-0a1b2c3d4e5f", http.StatusNotFound},
		{http.MethodPut, "/api/beatmaps/6f1c2b7e-3f59-4f7a-9d8e-0a1b2c3d4e5f", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/beatmaps/6f1c2b7e-3f59-4f7a-9d8e-0a1b2c3d4e5f/nope", http.StatusNotFound},
		{http.MethodPut, "/api/beatmaps", http.StatusMethodNotAllowed},
		{http.MethodGet, "/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := do(t, h, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.want, rec.Code)
		}
	}

	rec := upload(t, h, "garbage")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for an unparsable upload, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	h := setupTestServer(t, "https://allowed.example")

	req := httptest.NewRequest(http.MethodOptions, "/api/parse", nil)
	req.Header.Set("Origin", "https://allowed.example")
	rec := do(t, h, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://allowed.example" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://other.example")
	rec = do(t, h, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS header for unknown origin, got %q", got)
	}
}

func TestSplitOrigins(t *testing.T) {
	if got := splitOrigins("*"); len(got) != 1 || got[0] != "*" {
		t.Errorf("Expected [*], got %v", got)
	}
	got := splitOrigins(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("Unexpected origins: %v", got)
	}
}
