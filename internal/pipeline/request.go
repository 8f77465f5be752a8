package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/docbind/internal/exhibit"
)

// payload is the JSON form of a Request. The Portuguese field name is
// accepted for legacy clients.
type payload struct {
	Documents  []exhibit.Descriptor `json:"documents"`
	Documentos []exhibit.Descriptor `json:"documentos"`
	SortBy     string               `json:"sort_by"`
}

// DecodeRequest reads a JSON merge request from r. Besides the object form
// {"documents": [...], "sort_by": "..."} a bare array of descriptors is
// accepted.
func DecodeRequest(r io.Reader) (Request, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Request{}, fmt.Errorf("invalid JSON body: %w", err)
	}

	var p payload
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &p.Documents); err != nil {
			return Request{}, fmt.Errorf("invalid JSON body: %w", err)
		}
	} else if err := json.Unmarshal(raw, &p); err != nil {
		return Request{}, fmt.Errorf("invalid JSON body: %w", err)
	}

	req := Request{Documents: p.Documents}
	if len(req.Documents) == 0 {
		req.Documents = p.Documentos
	}
	if p.SortBy != "" {
		mode, err := exhibit.ParseSortMode(p.SortBy)
		if err != nil {
			return Request{}, err
		}
		req.SortMode = mode
	}
	return req, nil
}
