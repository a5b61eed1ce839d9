package server

import (
	"encoding/json"
	"log"
	"net/http"

	"scrite-studio/internal/greeting"
)

const openAPIPath = "/openapi.json"

// OpenAPI is the subset of an OpenAPI 3.1 document the service publishes.
type OpenAPI struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components,omitempty"`
}

// Info describes the API.
type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// PathItem maps lower-case methods to operations.
type PathItem map[string]Operation

// Operation is a single method on a path.
type Operation struct {
	Summary     string              `json:"summary"`
	OperationID string              `json:"operationId"`
	Responses   map[string]Response `json:"responses"`
}

// Response documents one status code.
type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType carries the schema of a response body.
type MediaType struct {
	Schema Schema `json:"schema"`
}

// Components holds reusable schemas.
type Components struct {
	Schemas map[string]Schema `json:"schemas,omitempty"`
}

// Schema is a free-form JSON schema.
type Schema map[string]any

// Document returns the OpenAPI description of the service routes.
func Document() OpenAPI {
	return OpenAPI{
		OpenAPI: "3.1.0",
		Info:    Info{Title: "Scrite Studio", Version: "0.1.0"},
		Paths: map[string]PathItem{
			greeting.Path: {
				"get": {
					Summary:     "Read Scrite",
					OperationID: "read_scrite",
					Responses: map[string]Response{
						"200": {
							Description: "Successful Response",
							Content: map[string]MediaType{
								"application/json": {Schema: Schema{"$ref": "#/components/schemas/Greeting"}},
							},
						},
					},
				},
			},
		},
		Components: Components{
			Schemas: map[string]Schema{
				"Greeting": {
					"type":     "object",
					"required": []string{"message"},
					"properties": map[string]any{
						"message": Schema{"type": "string", "example": greeting.Message},
					},
				},
			},
		},
	}
}

var openAPIDoc = func() []byte {
	b, err := json.Marshal(Document())
	if err != nil {
		panic("server: encode openapi document: " + err.Error())
	}
	return b
}()

func serveOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(openAPIDoc); err != nil {
		log.Printf("openapi: write response: %v", err)
	}
}
