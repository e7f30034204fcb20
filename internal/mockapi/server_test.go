package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Organization-ID", "org-1")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAuthentication(t *testing.T) {
	s := New(WithToken("secret"))
	h := s.Handler()

	if rr := do(t, h, http.MethodGet, "/api/rfps/", "", nil); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/rfps/", "", map[string]string{"Authorization": "Bearer secret"}); rr.Code != http.StatusOK {
		t.Errorf("valid token: status = %d", rr.Code)
	}
	rr := do(t, h, http.MethodGet, "/api/rfps/", "", map[string]string{"Authorization": "Bearer secret", "X-Organization-ID": ""})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("no organization: status = %d", rr.Code)
	}
}

func TestUpdateAnswer_MarksUserEdited(t *testing.T) {
	s := New()
	p := s.AddProject(rfp.Project{Name: "A", Questions: []rfp.Question{{Text: "Q1"}}})
	qid := p.Questions[0].ID
	h := s.Handler()

	rr := do(t, h, http.MethodPatch, "/api/rfps/"+p.ID+"/questions/"+qid, `{"answer_text":"Yes"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
	var q rfp.Question
	if err := json.Unmarshal(rr.Body.Bytes(), &q); err != nil {
		t.Fatal(err)
	}
	if q.AnswerText() != "Yes" || !q.UserEdited {
		t.Errorf("question = %+v", q)
	}
	stored, _ := s.Question(p.ID, qid)
	if !stored.UserEdited {
		t.Error("stored question not marked as edited")
	}
	if got := s.Calls("PATCH /api/rfps/:id/questions/:qid"); got != 1 {
		t.Errorf("calls = %d", got)
	}

	if rr := do(t, h, http.MethodPatch, "/api/rfps/"+p.ID+"/questions/nope", `{"answer_text":"x"}`, nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown question: status = %d", rr.Code)
	}
}

func TestExport(t *testing.T) {
	s := New()
	p := s.AddProject(rfp.Project{Name: "Acme"})
	h := s.Handler()

	rr := do(t, h, http.MethodGet, "/api/rfps/"+p.ID+"/export?format=pdf", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="Acme.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rr := do(t, h, http.MethodGet, "/api/rfps/"+p.ID+"/export?format=csv", "", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("bad format: status = %d", rr.Code)
	}
}

func TestUsage_Remaining(t *testing.T) {
	s := New()
	s.SeedDemo(3)
	rr := do(t, s.Handler(), http.MethodGet, "/billing/usage", "", nil)
	var u rfp.UsageStats
	if err := json.Unmarshal(rr.Body.Bytes(), &u); err != nil {
		t.Fatal(err)
	}
	if u.RFPs.Used != 1 || u.RFPs.Remaining != 49 || u.Docs.Used != 2 {
		t.Errorf("usage = %+v", u)
	}
}
