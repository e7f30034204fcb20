package sdk

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
)

// ListDocuments returns the knowledge-base documents.
func (c *Client) ListDocuments(ctx context.Context) ([]rfp.Document, error) {
	const p = "/api/documents/"
	res, err := c.get(ctx, p, nil)
	if err != nil {
		return nil, err
	}
	docs, err := rfp.DecodeList[rfp.Document](rfp.KindDocument, res.body)
	if err != nil {
		return nil, wrapDecode(p, err)
	}
	return docs, nil
}

// ListAttributes returns the knowledge-base attributes.
func (c *Client) ListAttributes(ctx context.Context) ([]rfp.Attribute, error) {
	const p = "/api/attributes/"
	res, err := c.get(ctx, p, nil)
	if err != nil {
		return nil, err
	}
	attrs, err := rfp.DecodeList[rfp.Attribute](rfp.KindAttribute, res.body)
	if err != nil {
		return nil, wrapDecode(p, err)
	}
	return attrs, nil
}

// UsageStats returns the monthly quota summary.
func (c *Client) UsageStats(ctx context.Context) (rfp.UsageStats, error) {
	const p = "/billing/usage"
	res, err := c.get(ctx, p, nil)
	if err != nil {
		return rfp.UsageStats{}, err
	}
	stats, err := rfp.Decode[rfp.UsageStats](rfp.KindUsage, res.body)
	if err != nil {
		return rfp.UsageStats{}, wrapDecode(p, err)
	}
	return stats, nil
}

// UploadFile is one file of an upload request.
type UploadFile struct {
	Name string
	Data []byte
}

// UploadOptions is the metadata shared by every file in a batch.
type UploadOptions struct {
	DocType rfp.DocType
	Tags    []string
}

// UploadedFile is a file the backend accepted.
type UploadedFile struct {
	Filename string `json:"filename"`
	ID       string `json:"id,omitempty"`
}

// FailedFile is a file the backend rejected.
type FailedFile struct {
	Filename string `json:"filename"`
	Error    string `json:"error,omitempty"`
}

// UploadResult is the per-file outcome of a batch upload.
type UploadResult struct {
	Uploaded []UploadedFile `json:"uploaded"`
	Failed   []FailedFile   `json:"failed"`
}

// UploadFiles sends every file in one multipart request.
func (c *Client) UploadFiles(ctx context.Context, files []UploadFile, opts UploadOptions) (*UploadResult, error) {
	const p = "/api/documents/batch"
	parts := make([]multipartFile, 0, len(files))
	for _, f := range files {
		parts = append(parts, multipartFile{field: "files", file: f})
	}
	docType := opts.DocType
	if docType == "" {
		docType = rfp.DocOther
	}
	fields := map[string]string{"doc_type": docType.Wire()}
	if len(opts.Tags) > 0 {
		fields["tags"] = strings.Join(opts.Tags, ",")
	}
	body, contentType, err := encodeMultipart(parts, fields)
	if err != nil {
		return nil, err
	}
	res, err := c.send(ctx, request{method: http.MethodPost, path: p, body: body, contentType: contentType})
	if err != nil {
		return nil, err
	}
	out, err := decodeInto[UploadResult](p, res)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type multipartFile struct {
	field string
	file  UploadFile
}

func encodeMultipart(files []multipartFile, fields map[string]string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", f.file.Name, err)
		}
		if _, err := part.Write(f.file.Data); err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", f.file.Name, err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("encode field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("encode multipart: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

type errMissingField string

func (e errMissingField) Error() string {
	return fmt.Sprintf("missing field %q", string(e))
}
