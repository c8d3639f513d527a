package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/qri-io/jsonschema"
)

const maxBodyBytes = 1 << 20

// Request body schemas. They pin the shape of each write; value rules that
// depend on stored state (rating range, frozen plans) stay in the core.
var (
	registerSchema = mustSchema(`{
		"type": "object",
		"required": ["name", "email", "password"],
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 200},
			"email": {"type": "string", "format": "email", "maxLength": 254},
			"password": {"type": "string", "minLength": 8, "maxLength": 72}
		}
	}`)

	loginSchema = mustSchema(`{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email": {"type": "string"},
			"password": {"type": "string"}
		}
	}`)

	createRequestSchema = mustSchema(`{
		"type": "object",
		"required": ["topic", "description"],
		"properties": {
			"topic": {"type": "string"},
			"description": {"type": "string"}
		}
	}`)

	assignSchema = mustSchema(`{
		"type": "object",
		"required": ["mentorId"],
		"properties": {
			"mentorId": {"type": "string", "minLength": 1}
		}
	}`)

	mentorSchema = mustSchema(`{
		"type": "object",
		"required": ["name", "jobTitle", "email"],
		"properties": {
			"name": {"type": "string"},
			"jobTitle": {"type": "string"},
			"experience": {"type": "string"},
			"email": {"type": "string"},
			"telegram": {"type": ["string", "null"]},
			"avatar": {"type": ["string", "null"]}
		}
	}`)

	replacePlanSchema = mustSchema(`{
		"type": "object",
		"required": ["plan"],
		"properties": {
			"plan": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["text"],
					"properties": {
						"id": {"type": "string"},
						"text": {"type": "string"},
						"completed": {"type": "boolean"}
					}
				}
			}
		}
	}`)

	addPlanItemSchema = mustSchema(`{
		"type": "object",
		"required": ["text"],
		"properties": {
			"text": {"type": "string"}
		}
	}`)

	editPlanItemSchema = mustSchema(`{
		"type": "object",
		"required": ["text", "completed"],
		"properties": {
			"text": {"type": "string"},
			"completed": {"type": "boolean"}
		}
	}`)

	notesSchema = mustSchema(`{
		"type": "object",
		"required": ["notes"],
		"properties": {
			"notes": {"type": "string"}
		}
	}`)

	completeSchema = mustSchema(`{
		"type": "object",
		"required": ["rating"],
		"properties": {
			"rating": {"type": "integer"},
			"comment": {"type": "string"}
		}
	}`)
)

func mustSchema(src string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(src), rs); err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return rs
}

// decodeBody reads the request body, checks it against schema and decodes it
// into dst. Shape failures come back as validation errors.
func decodeBody(r *http.Request, schema *jsonschema.Schema, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("request body too large or unreadable")
	}
	if !json.Valid(body) {
		return badRequest("request body is not valid JSON")
	}

	keyErrs, err := schema.ValidateBytes(r.Context(), body)
	if err != nil {
		return badRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	if len(keyErrs) > 0 {
		msgs := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			path := ke.PropertyPath
			if path == "" {
				path = "/"
			}
			msgs = append(msgs, path+": "+ke.Message)
		}
		return badRequest(strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return badRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
