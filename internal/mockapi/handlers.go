package mockapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
)

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"detail": what + " not found"})
}

func (s *Server) findProjectLocked(id string) *rfp.Project {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return &s.projects[i]
		}
	}
	return nil
}

func (s *Server) listProjects(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rfp.Project, len(s.projects))
	copy(out, s.projects)
	c.JSON(http.StatusOK, out)
}

func (s *Server) getProject(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProjectLocked(c.Param("id"))
	if p == nil {
		notFound(c, "RFP")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createProject(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	name := strings.TrimSpace(c.PostForm("rfp_name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "rfp_name is required"})
		return
	}
	if err := s.uploadRule(header.Filename, header.Size); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	p := s.AddProject(rfp.Project{
		Name:    name,
		FileURL: "https://files.example.com/rfps/" + header.Filename,
		Status:  rfp.StatusProcessing,
	})
	c.JSON(http.StatusCreated, p)
}

func (s *Server) deleteProject(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.projects {
		if p.ID == c.Param("id") {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	notFound(c, "RFP")
}

var exportTypes = map[string]struct {
	contentType string
	magic       string
}{
	"xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "PK\x03\x04"},
	"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "PK\x03\x04"},
	"pdf":  {"application/pdf", "%PDF-1.7\n"},
}

func (s *Server) exportProject(c *gin.Context) {
	format := c.Query("format")
	kind, ok := exportTypes[format]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "format must be one of xlsx, docx, pdf"})
		return
	}
	s.mu.Lock()
	p := s.findProjectLocked(c.Param("id"))
	if p == nil {
		s.mu.Unlock()
		notFound(c, "RFP")
		return
	}
	var b strings.Builder
	b.WriteString(kind.magic)
	for _, q := range p.Questions {
		b.WriteString(q.Text)
		b.WriteString("\t")
		b.WriteString(q.AnswerText())
		b.WriteString("\n")
	}
	name := p.Name
	s.mu.Unlock()

	c.Header("Content-Disposition", `attachment; filename="`+name+"."+format+`"`)
	c.Data(http.StatusOK, kind.contentType, []byte(b.String()))
}

func (s *Server) updateAnswer(c *gin.Context) {
	var body struct {
		AnswerText *string `json:"answer_text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.AnswerText == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "answer_text is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProjectLocked(c.Param("id"))
	if p == nil {
		notFound(c, "RFP")
		return
	}
	for i := range p.Questions {
		q := &p.Questions[i]
		if q.ID != c.Param("qid") {
			continue
		}
		text := *body.AnswerText
		q.Answer = &text
		q.UserEdited = true
		q.UpdatedAt = rfp.Timestamp{Time: s.now()}
		p.UpdatedAt = q.UpdatedAt
		c.JSON(http.StatusOK, q)
		return
	}
	notFound(c, "Question")
}

func (s *Server) rephraseAnswer(c *gin.Context) {
	var body struct {
		CurrentText string `json:"current_text"`
		Instruction string `json:"instruction"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Instruction) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "instruction is required"})
		return
	}

	s.mu.Lock()
	p := s.findProjectLocked(c.Param("id"))
	var found bool
	if p != nil {
		_, found = p.Question(c.Param("qid"))
	}
	rephrase := s.rephrase
	s.mu.Unlock()
	if !found {
		notFound(c, "Question")
		return
	}

	out, err := rephrase(body.CurrentText, body.Instruction)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rephrased_answer": out})
}

func (s *Server) listDocuments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rfp.Document, len(s.documents))
	copy(out, s.documents)
	c.JSON(http.StatusOK, out)
}

type uploadedFile struct {
	Filename string `json:"filename"`
	ID       string `json:"id"`
}

type failedFile struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

func (s *Server) uploadDocuments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "multipart form expected"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "no files"})
		return
	}
	docType, err := rfp.ParseDocType(c.PostForm("doc_type"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	var tags []string
	for _, t := range strings.Split(c.PostForm("tags"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	uploaded := []uploadedFile{}
	failed := []failedFile{}
	for _, fh := range files {
		size, err := fileSize(fh)
		if err == nil {
			err = s.uploadRule(fh.Filename, size)
		}
		if err != nil {
			failed = append(failed, failedFile{Filename: fh.Filename, Error: err.Error()})
			continue
		}
		s.mu.Lock()
		doc := s.addDocumentLocked(rfp.Document{
			Filename: fh.Filename,
			FileURL:  "https://files.example.com/documents/" + fh.Filename,
			DocType:  docType,
			Tags:     tags,
			FileSize: size,
		})
		s.mu.Unlock()
		uploaded = append(uploaded, uploadedFile{Filename: fh.Filename, ID: doc.ID})
	}
	c.JSON(http.StatusOK, gin.H{"uploaded": uploaded, "failed": failed})
}

func fileSize(fh *multipart.FileHeader) (int64, error) {
	f, err := fh.Open()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(io.Discard, f)
}

func (s *Server) deleteDocument(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.documents {
		if d.ID == c.Param("id") {
			s.documents = append(s.documents[:i], s.documents[i+1:]...)
			s.usage.Docs.Used--
			c.Status(http.StatusNoContent)
			return
		}
	}
	notFound(c, "Document")
}

func (s *Server) listAttributes(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rfp.Attribute, len(s.attributes))
	copy(out, s.attributes)
	c.JSON(http.StatusOK, out)
}

func (s *Server) deleteAttribute(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.attributes {
		if a.ID == c.Param("id") {
			s.attributes = append(s.attributes[:i], s.attributes[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	notFound(c, "Attribute")
}

func (s *Server) getUsage(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.usage
	u.RFPs.Remaining = max(u.RFPs.Limit-u.RFPs.Used, 0)
	u.Docs.Remaining = max(u.Docs.Limit-u.Docs.Used, 0)
	c.JSON(http.StatusOK, u)
}
