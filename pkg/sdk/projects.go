package sdk

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
)

func projectPath(projectID string) string {
	return "/api/rfps/" + url.PathEscape(projectID)
}

func questionPath(projectID, questionID string) string {
	return projectPath(projectID) + "/questions/" + url.PathEscape(questionID)
}

// ListProjects returns every project visible to the organization.
func (c *Client) ListProjects(ctx context.Context) ([]rfp.Project, error) {
	const p = "/api/rfps/"
	res, err := c.get(ctx, p, nil)
	if err != nil {
		return nil, err
	}
	projects, err := rfp.DecodeList[rfp.Project](rfp.KindProject, res.body)
	if err != nil {
		return nil, wrapDecode(p, err)
	}
	return projects, nil
}

// GetProject returns one project with its questions in server order.
func (c *Client) GetProject(ctx context.Context, projectID string) (rfp.Project, error) {
	p := projectPath(projectID)
	res, err := c.get(ctx, p, nil)
	if err != nil {
		return rfp.Project{}, err
	}
	project, err := rfp.Decode[rfp.Project](rfp.KindProject, res.body)
	if err != nil {
		return rfp.Project{}, wrapDecode(p, err)
	}
	return project, nil
}

// UpdateQuestionAnswer persists answer text and returns the stored question.
func (c *Client) UpdateQuestionAnswer(ctx context.Context, projectID, questionID, text string) (rfp.Question, error) {
	p := questionPath(projectID, questionID)
	res, err := c.sendJSON(ctx, http.MethodPatch, p, map[string]string{"answer_text": text})
	if err != nil {
		return rfp.Question{}, err
	}
	q, err := rfp.Decode[rfp.Question](rfp.KindQuestion, res.body)
	if err != nil {
		return rfp.Question{}, wrapDecode(p, err)
	}
	return q, nil
}

// RephraseRequest is the body of a rephrase call.
type RephraseRequest struct {
	CurrentText string `json:"current_text"`
	Instruction string `json:"instruction"`
}

// RephraseAnswer asks the backend for a candidate rewrite. Nothing is persisted.
func (c *Client) RephraseAnswer(ctx context.Context, projectID, questionID string, req RephraseRequest) (string, error) {
	p := questionPath(projectID, questionID) + "/rephrase"
	res, err := c.sendJSON(ctx, http.MethodPost, p, req)
	if err != nil {
		return "", err
	}
	out, err := decodeInto[struct {
		Rephrased *string `json:"rephrased_answer"`
	}](p, res)
	if err != nil {
		return "", err
	}
	if out.Rephrased == nil {
		return "", &DecodeError{Path: p, Err: errMissingField("rephrased_answer")}
	}
	return *out.Rephrased, nil
}

// ExportFile is a rendered project export.
type ExportFile struct {
	// Filename is the name suggested by Content-Disposition, or "".
	Filename    string
	ContentType string
	Data        []byte
}

// ExportProject renders a project in format (xlsx, docx or pdf).
func (c *Client) ExportProject(ctx context.Context, projectID, format string) (*ExportFile, error) {
	res, err := c.get(ctx, projectPath(projectID)+"/export", url.Values{"format": {format}})
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    dispositionFilename(res.header.Get("Content-Disposition")),
		ContentType: res.header.Get("Content-Type"),
		Data:        res.body,
	}, nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return path.Base(params["filename"])
}

// UploadProject uploads an RFP file for question extraction.
func (c *Client) UploadProject(ctx context.Context, file UploadFile, name string) (rfp.Project, error) {
	const p = "/api/rfps/"
	body, contentType, err := encodeMultipart([]multipartFile{{field: "file", file: file}}, map[string]string{"rfp_name": name})
	if err != nil {
		return rfp.Project{}, err
	}
	res, err := c.send(ctx, request{method: http.MethodPost, path: p, body: body, contentType: contentType})
	if err != nil {
		return rfp.Project{}, err
	}
	project, err := rfp.Decode[rfp.Project](rfp.KindProject, res.body)
	if err != nil {
		return rfp.Project{}, wrapDecode(p, err)
	}
	return project, nil
}

// Entity names a deletable collection.
type Entity string

const (
	EntityProject   Entity = "rfps"
	EntityDocument  Entity = "documents"
	EntityAttribute Entity = "attributes"
)

// DeleteEntity removes one record.
func (c *Client) DeleteEntity(ctx context.Context, entity Entity, id string) error {
	switch entity {
	case EntityProject, EntityDocument, EntityAttribute:
	default:
		return fmt.Errorf("unknown entity %q", entity)
	}
	_, err := c.send(ctx, request{method: http.MethodDelete, path: "/api/" + string(entity) + "/" + url.PathEscape(id)})
	return err
}
