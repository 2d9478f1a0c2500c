package control

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema is the minimum every loadable document file satisfies.
const documentSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "id": {
      "anyOf": [
        {"type": "string", "minLength": 1},
        {"type": "integer"}
      ]
    }
  }
}`

type documentValidator struct {
	schema *gojsonschema.Schema
}

func newDocumentValidator() (*documentValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	return &documentValidator{schema: schema}, nil
}

// documentID validates raw and returns its id as a string.
func (v *documentValidator) documentID(raw []byte) (string, error) {
	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}
	if !res.Valid() {
		errs := make([]string, 0, len(res.Errors()))
		for _, desc := range res.Errors() {
			errs = append(errs, desc.String())
		}
		return "", fmt.Errorf("invalid document: %s", strings.Join(errs, "; "))
	}

	var doc struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}
	var s string
	if err := json.Unmarshal(doc.ID, &s); err == nil {
		return s, nil
	}
	return string(doc.ID), nil
}
