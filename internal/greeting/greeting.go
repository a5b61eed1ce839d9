// Package greeting implements the studio greeting endpoint.
package greeting

import (
	"encoding/json"
	"log"
	"net/http"
)

// The route the greeting is served on.
const Path = "/teamspace/studios/this_studio/scrite"

// The greeting returned on every call.
const Message = "Welcome to Scrite in this studio!"

// A Response is the JSON body of the greeting.
type Response struct {
	Message string `json:"message"`
}

// Encoded once; the body never varies.
var body = mustEncode(Response{Message: Message})

func mustEncode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic("greeting: encode response: " + err.Error())
	}
	return b
}

// Handler writes the greeting. The request is not inspected.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Printf("greeting: write response: %v", err)
	}
}
