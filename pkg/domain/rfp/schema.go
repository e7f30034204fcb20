package rfp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Structural schemas: only required fields and their JSON types. Enum
// membership is checked by each record's Validate so unknown values get a
// RecordError that names the field.
const questionSchemaJSON = `{
  "type": "object",
  "required": ["id", "question_text", "trust_score"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "question_text": { "type": "string" },
    "answer_text": { "type": ["string", "null"] },
    "trust_score": { "type": "number" },
    "user_edited": { "type": "boolean" },
    "source_ids": { "type": ["array", "null"], "items": { "type": "string" } }
  }
}`

var recordSchemaJSON = map[Kind]string{
	KindProject: `{
  "type": "object",
  "required": ["id", "rfp_name", "status"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "rfp_name": { "type": "string" },
    "status": { "type": "string" },
    "questions": { "type": ["array", "null"], "items": ` + questionSchemaJSON + ` }
  }
}`,
	KindQuestion: questionSchemaJSON,
	KindDocument: `{
  "type": "object",
  "required": ["id", "filename"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "filename": { "type": "string" },
    "tags": { "type": ["array", "null"], "items": { "type": "string" } },
    "file_size": { "type": ["integer", "null"] }
  }
}`,
	KindAttribute: `{
  "type": "object",
  "required": ["id", "key", "value", "category"],
  "properties": {
    "id": { "type": "string", "minLength": 1 },
    "key": { "type": "string" },
    "value": { "type": "string" },
    "category": { "type": "string" },
    "source_doc_id": { "type": ["string", "null"] }
  }
}`,
	KindUsage: `{
  "type": "object",
  "required": ["rfps", "docs"],
  "properties": {
    "rfps": { "$ref": "#/definitions/quota" },
    "docs": { "$ref": "#/definitions/quota" }
  },
  "definitions": {
    "quota": {
      "type": "object",
      "required": ["used", "limit"],
      "properties": {
        "used": { "type": "integer" },
        "limit": { "type": "integer" },
        "remaining": { "type": "integer" }
      }
    }
  }
}`,
}

var recordSchemas = mustCompileSchemas()

func mustCompileSchemas() map[Kind]*gojsonschema.Schema {
	out := make(map[Kind]*gojsonschema.Schema, len(recordSchemaJSON))
	for kind, src := range recordSchemaJSON {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			panic(fmt.Sprintf("compile %s schema: %v", kind, err))
		}
		out[kind] = schema
	}
	return out
}

// validatable is implemented by every record type.
type validatable interface {
	Validate() error
}

// checkStructure validates one raw JSON object against the schema for kind.
func checkStructure(kind Kind, raw json.RawMessage) error {
	schema, ok := recordSchemas[kind]
	if !ok {
		return fmt.Errorf("no schema for %s", kind)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &RecordError{Kind: kind, ID: peekID(raw), Reason: err.Error()}
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	field := ""
	for _, desc := range result.Errors() {
		if field == "" {
			field = desc.Field()
		}
		issues = append(issues, desc.String())
	}
	return &RecordError{Kind: kind, ID: peekID(raw), Field: field, Reason: strings.Join(issues, "; ")}
}

func peekID(raw json.RawMessage) string {
	var probe struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.ID == nil {
		return ""
	}
	return fmt.Sprint(probe.ID)
}

// Decode validates data as one record of the given kind and decodes it.
func Decode[T validatable](kind Kind, data []byte) (T, error) {
	var zero T
	if err := checkStructure(kind, data); err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, &RecordError{Kind: kind, ID: peekID(data), Reason: err.Error()}
	}
	if err := v.Validate(); err != nil {
		return zero, err
	}
	return v, nil
}

// DecodeList validates and decodes a JSON array of records. One malformed
// element rejects the whole list.
func DecodeList[T validatable](kind Kind, data []byte) ([]T, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &RecordError{Kind: kind, Reason: "expected a JSON array: " + err.Error()}
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := Decode[T](kind, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
