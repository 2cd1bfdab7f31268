package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/cognivex/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" {
		t.Errorf("title: got %s, want Test API", spec.Info.Title)
	}
	if spec.Components == nil {
		t.Fatal("components should not be nil")
	}
	if _, ok := spec.Components.Schemas["Error"]; !ok {
		t.Error("components should include Error schema")
	}
	if spec.Paths == nil {
		t.Fatal("paths should not be nil")
	}
}

func TestAddServer(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddServer("http://localhost:8080")

	if len(spec.Servers) != 1 {
		t.Fatalf("servers: got %d, want 1", len(spec.Servers))
	}
	if spec.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("server url: got %s", spec.Servers[0].URL)
	}
}

func TestAddTagDeduplicates(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddTag("Sessions", "first")
	spec.AddTag("Sessions", "second")

	if len(spec.Tags) != 1 {
		t.Fatalf("tags: got %d, want 1", len(spec.Tags))
	}
	if spec.Tags[0].Description != "first" {
		t.Errorf("description: got %s, want first", spec.Tags[0].Description)
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")

	get := &openapi.Operation{Summary: "get"}
	patch := &openapi.Operation{Summary: "patch"}
	spec.AddOperation("/sessions/{id}", "GET", get)
	spec.AddOperation("/sessions/{id}", "patch", patch)
	spec.AddOperation("/sessions/{id}", "TRACE", &openapi.Operation{})

	item := spec.Paths["/sessions/{id}"]
	if item == nil {
		t.Fatal("path item missing")
	}
	if item.Get != get {
		t.Error("GET operation not attached")
	}
	if item.Patch != patch {
		t.Error("PATCH operation not attached")
	}
}

func TestSchemaRef(t *testing.T) {
	ref := openapi.SchemaRef("Snapshot")
	if ref.Ref != "#/components/schemas/Snapshot" {
		t.Errorf("ref: got %s", ref.Ref)
	}
}

func TestResponses(t *testing.T) {
	out := openapi.Responses(
		map[int]*openapi.Response{200: openapi.ResponseJSON("ok", "Snapshot")},
		http.StatusNotFound, http.StatusBadGateway, 418,
	)

	if len(out) != 3 {
		t.Fatalf("responses: got %d, want 3", len(out))
	}
	if out[404].Ref != "#/components/responses/NotFound" {
		t.Errorf("404 ref: got %s", out[404].Ref)
	}
	if out[502].Ref != "#/components/responses/BadGateway" {
		t.Errorf("502 ref: got %s", out[502].Ref)
	}
	if out[200].Description != "ok" {
		t.Errorf("200 description: got %s", out[200].Description)
	}
}

func TestRequestBodyMultipart(t *testing.T) {
	rb := openapi.RequestBodyMultipart("file", "Document file")

	mt, ok := rb.Content["multipart/form-data"]
	if !ok {
		t.Fatal("missing multipart/form-data content")
	}
	if mt.Schema.Properties["file"].Format != "binary" {
		t.Errorf("file format: got %s", mt.Schema.Properties["file"].Format)
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", res.StatusCode)
	}

	body, _ := io.ReadAll(res.Body)
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed["openapi"] != "3.1.0" {
		t.Errorf("openapi: got %v", parsed["openapi"])
	}
}
