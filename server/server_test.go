package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	contractx "github.com/idurar/emily-assistant/agent/contract"
)

type fakeAssistant struct {
	reply   string
	err     error
	message string
	history []contractx.Message
	calls   int
}

func (f *fakeAssistant) HandleMessage(ctx context.Context, message string, history []contractx.Message) (string, error) {
	f.calls++
	f.message = message
	f.history = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Port:           0,
		UploadDir:      t.TempDir(),
		RequestTimeout: 5 * time.Second,
		MaxUploadBytes: 1 << 20,
	}
}

func postChat(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/emily/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return body
}

func TestChatSuccess(t *testing.T) {
	t.Parallel()

	assistant := &fakeAssistant{reply: "Hello! How can I help?"}
	srv := New(testConfig(t), assistant)

	rec := postChat(t, srv, `{"message":"hi","history":[{"role":"user","content":"earlier"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("expected success envelope: %v", body)
	}
	if body["result"] != "Hello! How can I help?" {
		t.Fatalf("unexpected result: %v", body["result"])
	}
	if body["message"] != "Successfully retrieved response from Emily" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
	if assistant.message != "hi" || len(assistant.history) != 1 {
		t.Fatalf("handler must receive message and history, got %q / %d", assistant.message, len(assistant.history))
	}
}

func TestChatMalformedBody(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(t), &fakeAssistant{})
	rec := postChat(t, srv, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["success"] != false {
		t.Fatalf("expected failure envelope: %v", body)
	}
}

func TestChatErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantInMsg  string
	}{
		{"validation", contractx.ErrValidation, http.StatusBadRequest, "Invalid"},
		{"configuration", contractx.ErrConfiguration, http.StatusInternalServerError, "not configured"},
		{"upstream", contractx.ErrUpstream, http.StatusInternalServerError, "communicating with Emily"},
		{"storage", contractx.ErrStorage, http.StatusInternalServerError, "communicating with Emily"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := New(testConfig(t), &fakeAssistant{err: tc.err})
			rec := postChat(t, srv, `{"message":"hi"}`)
			if rec.Code != tc.wantStatus {
				t.Fatalf("unexpected status: %d", rec.Code)
			}
			body := decodeBody(t, rec)
			msg, _ := body["message"].(string)
			if !strings.Contains(msg, tc.wantInMsg) {
				t.Fatalf("message %q should contain %q", msg, tc.wantInMsg)
			}
			if _, ok := body["error"]; !ok {
				t.Fatal("error detail field must be present")
			}
		})
	}
}

func TestChatConfigurationMessageIsDistinct(t *testing.T) {
	t.Parallel()

	configured := New(testConfig(t), &fakeAssistant{err: contractx.ErrConfiguration})
	transient := New(testConfig(t), &fakeAssistant{err: contractx.ErrUpstream})

	confBody := decodeBody(t, postChat(t, configured, `{"message":"hi"}`))
	upBody := decodeBody(t, postChat(t, transient, `{"message":"hi"}`))
	if confBody["message"] == upBody["message"] {
		t.Fatal("configuration and upstream failures must be observably different")
	}
}

func TestUpload(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	srv := New(cfg, &fakeAssistant{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "report.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := part.Write([]byte("a,b,c\n1,2,3\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/emily/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	result, _ := body["result"].(map[string]any)
	if result["name"] != "report.csv" {
		t.Fatalf("unexpected result: %v", result)
	}
	if result["path"] != "/uploads/report.csv" {
		t.Fatalf("unexpected path: %v", result["path"])
	}

	saved, err := os.ReadFile(filepath.Join(cfg.UploadDir, "report.csv"))
	if err != nil {
		t.Fatalf("uploaded file must exist: %v", err)
	}
	if string(saved) != "a,b,c\n1,2,3\n" {
		t.Fatalf("unexpected file content: %q", string(saved))
	}
}

func TestUploadWithoutFile(t *testing.T) {
	t.Parallel()

	srv := New(testConfig(t), &fakeAssistant{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/emily/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "No files were uploaded." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestUploadSanitizesFilename(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	srv := New(cfg, &fakeAssistant{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "../../etc/passwd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	part.Write([]byte("x"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/emily/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if _, err := os.Stat(filepath.Join(cfg.UploadDir, "passwd")); err != nil {
		t.Fatalf("file must land inside the upload dir: %v", err)
	}
}
