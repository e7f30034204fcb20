package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
)

const projectJSON = `{
  "id": "p1",
  "rfp_name": "Acme Security Review",
  "status": "completed",
  "created_at": "2026-03-01T10:00:00",
  "questions": [
    {"id": "q1", "question_text": "Do you encrypt data at rest?", "answer_text": "Yes.", "trust_score": 0.82, "user_edited": false},
    {"id": "q2", "question_text": "SOC 2?", "answer_text": null, "trust_score": 35, "user_edited": false}
  ]
}`

func testTokens() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret", Expiry: time.Now().Add(time.Hour)})
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) (*Client, context.Context) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRetry(3, time.Millisecond), WithTimeout(5 * time.Second)}, opts...)
	c, err := NewClient(srv.URL, testTokens(), opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, WithOrganization(context.Background(), "org-1")
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	if _, err := NewClient("ftp://example.com", testTokens()); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}

func TestGetProject_SendsHeaders(t *testing.T) {
	var gotAuth, gotOrg, gotReqID, gotPath string
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotOrg = r.Header.Get(headerOrganization)
		gotReqID = r.Header.Get(headerRequestID)
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, projectJSON)
	}))

	project, err := c.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotOrg != "org-1" {
		t.Errorf("organization = %q", gotOrg)
	}
	if gotReqID == "" {
		t.Error("missing request id")
	}
	if gotPath != "/api/rfps/p1" {
		t.Errorf("path = %q", gotPath)
	}
	if project.Name != "Acme Security Review" || project.QuestionCount() != 2 {
		t.Errorf("project = %+v", project)
	}
	if project.Questions[1].Answer != nil {
		t.Error("null answer should decode to nil")
	}
}

func TestClient_Unauthenticated(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()
	ctx := WithOrganization(context.Background(), "org-1")

	tests := []struct {
		name   string
		tokens oauth2.TokenSource
	}{
		{"nil source", nil},
		{"empty token", oauth2.StaticTokenSource(&oauth2.Token{})},
		{"expired token", oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "x", Expiry: time.Now().Add(-time.Hour)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(srv.URL, tt.tokens)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := c.ListProjects(ctx); !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("err = %v, want ErrUnauthenticated", err)
			}
		})
	}
	if hits.Load() != 0 {
		t.Errorf("backend hit %d times without credentials", hits.Load())
	}
}

func TestClient_RequiresOrganization(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())
	if _, err := c.ListProjects(context.Background()); !errors.Is(err, ErrNoOrganization) {
		t.Errorf("err = %v, want ErrNoOrganization", err)
	}
}

func TestClient_ForbiddenIsUnauthenticated(t *testing.T) {
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"detail":"token revoked"}`)
	}))
	_, err := c.ListDocuments(ctx)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "token revoked" {
		t.Errorf("api error = %+v", apiErr)
	}
}

func TestClient_RetriesReads(t *testing.T) {
	var hits atomic.Int32
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))

	docs, err := c.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("docs = %v", docs)
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3", hits.Load())
	}
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))

	_, err := c.GetProject(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}

func TestClient_WritesAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.UpdateQuestionAnswer(ctx, "p1", "q1", "text")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Temporary() {
		t.Fatalf("err = %v, want temporary APIError", err)
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}

func TestUpdateQuestionAnswer(t *testing.T) {
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/rfps/p1/questions/q1" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "q1", "question_text": "Q", "answer_text": body["answer_text"], "trust_score": 0.9, "user_edited": true,
		})
	}))

	q, err := c.UpdateQuestionAnswer(ctx, "p1", "q1", "Edited answer")
	if err != nil {
		t.Fatalf("UpdateQuestionAnswer: %v", err)
	}
	if q.AnswerText() != "Edited answer" || !q.UserEdited {
		t.Errorf("question = %+v", q)
	}
}

func TestRephraseAnswer(t *testing.T) {
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RephraseRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Instruction != "shorter" || req.CurrentText != "long text" {
			t.Errorf("request = %+v", req)
		}
		_, _ = io.WriteString(w, `{"rephrased_answer":"short"}`)
	}))

	got, err := c.RephraseAnswer(ctx, "p1", "q1", RephraseRequest{CurrentText: "long text", Instruction: "shorter"})
	if err != nil {
		t.Fatalf("RephraseAnswer: %v", err)
	}
	if got != "short" {
		t.Errorf("got %q", got)
	}
}

func TestRephraseAnswer_MissingField(t *testing.T) {
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	_, err := c.RephraseAnswer(ctx, "p1", "q1", RephraseRequest{CurrentText: "a", Instruction: "b"})
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("err = %v, want DecodeError", err)
	}
}

func TestListProjects_RejectsMalformedRecords(t *testing.T) {
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"p1","rfp_name":"A","status":"archived"}]`)
	}))
	_, err := c.ListProjects(ctx)
	if !errors.Is(err, rfp.ErrMalformedRecord) {
		t.Errorf("err = %v, want ErrMalformedRecord", err)
	}
}

func TestExportProject(t *testing.T) {
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "pdf" {
			t.Errorf("format = %q", r.URL.Query().Get("format"))
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="../Acme.pdf"`)
		_, _ = io.WriteString(w, "%PDF-1.7")
	}))

	f, err := c.ExportProject(ctx, "p1", "pdf")
	if err != nil {
		t.Fatalf("ExportProject: %v", err)
	}
	if f.Filename != "Acme.pdf" {
		t.Errorf("filename = %q", f.Filename)
	}
	if string(f.Data) != "%PDF-1.7" {
		t.Errorf("data = %q", f.Data)
	}
}

func TestUploadFiles(t *testing.T) {
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("doc_type"); got != "CONTRACT" {
			t.Errorf("doc_type = %q", got)
		}
		if got := r.FormValue("tags"); got != "legal,2026" {
			t.Errorf("tags = %q", got)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Errorf("files = %d", len(files))
		}
		_, _ = io.WriteString(w, `{"uploaded":[{"filename":"a.pdf","id":"d1"}],"failed":[{"filename":"b.pdf","error":"unsupported"}]}`)
	}))

	res, err := c.UploadFiles(ctx, []UploadFile{{Name: "a.pdf", Data: []byte("a")}, {Name: "b.pdf", Data: []byte("b")}},
		UploadOptions{DocType: rfp.DocContract, Tags: []string{"legal", "2026"}})
	if err != nil {
		t.Fatalf("UploadFiles: %v", err)
	}
	if len(res.Uploaded) != 1 || len(res.Failed) != 1 || res.Failed[0].Error != "unsupported" {
		t.Errorf("result = %+v", res)
	}
}

func TestDeleteEntity(t *testing.T) {
	var got string
	c, ctx := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	if err := c.DeleteEntity(ctx, EntityDocument, "d1"); err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}
	if got != "DELETE /api/documents/d1" {
		t.Errorf("request = %q", got)
	}
	if err := c.DeleteEntity(ctx, Entity("users"), "u1"); err == nil {
		t.Error("expected error for unknown entity")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"Question not found"}`, "Question not found"},
		{`{"error":"bad"}`, "bad"},
		{`plain failure`, "plain failure"},
		{`{"detail":[{"loc":["body"],"msg":"field required"}]}`, `[{"loc":["body"],"msg":"field required"}]`},
	}
	for _, tt := range tests {
		if got := errorMessage([]byte(tt.body)); got != tt.want {
			t.Errorf("errorMessage(%s) = %q, want %q", tt.body, got, tt.want)
		}
	}
	if got := errorMessage([]byte(strings.Repeat("x", 300))); len(got) != 200 {
		t.Errorf("long message not truncated: %d", len(got))
	}
}
