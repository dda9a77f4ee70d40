package handlers

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"toon_bridge/internal/service"

	"github.com/swaggo/swag"
)

var ginParam = regexp.MustCompile(`:([A-Za-z_]+)`)

func TestSwaggerDocumentsEveryRoute(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var spec struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &spec); err != nil {
		t.Fatalf("doc is not valid JSON: %v", err)
	}

	r := newTestRouter(&service.Service{Authorization: &mockAuth{}})
	for _, rt := range r.Routes() {
		if strings.HasPrefix(rt.Path, "/swagger") || (len(rt.Path) > 1 && strings.HasSuffix(rt.Path, "/")) {
			continue
		}
		path := ginParam.ReplaceAllString(rt.Path, "{$1}")
		if _, ok := spec.Paths[path][strings.ToLower(rt.Method)]; !ok {
			t.Errorf("%s %s is not documented", rt.Method, path)
		}
	}
}
