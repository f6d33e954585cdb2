//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// apiDoc is served as /swagger/doc.json. Regenerate the handler annotations
// with swag when routes change.
type apiDoc struct{}

func (apiDoc) ReadDoc() string { return docJSON }

func init() {
	swag.Register(swag.Name, apiDoc{})
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

const docJSON = `{
  "swagger": "2.0",
  "info": {
    "title": "synthmind API",
    "description": "Chat, image generation and image description over locally cached models.",
    "version": "1.0"
  },
  "basePath": "/",
  "schemes": ["http"],
  "paths": {
    "/chat": {
      "post": {
        "tags": ["chat"],
        "summary": "Chat reply",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/ChatRequest"}}],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/ChatResponse"}},
          "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "404": {"description": "Persona Not Found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "429": {"description": "Too Busy", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "502": {"description": "Fetch or Inference Failure", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "503": {"description": "Download or Runtime Unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    },
    "/images": {
      "post": {
        "tags": ["images"],
        "summary": "Generate image",
        "consumes": ["application/json"],
        "produces": ["image/png"],
        "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/ImageRequest"}}],
        "responses": {
          "200": {"description": "PNG image"},
          "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "502": {"description": "Inference Failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    },
    "/vision": {
      "post": {
        "tags": ["vision"],
        "summary": "Describe image",
        "consumes": ["multipart/form-data"],
        "produces": ["application/json"],
        "parameters": [
          {"in": "query", "name": "model", "type": "string"},
          {"in": "formData", "name": "image", "type": "file"}
        ],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/VisionResponse"}},
          "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    },
    "/models/pull": {
      "post": {
        "tags": ["models"],
        "summary": "Pull model",
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/PullRequest"}}],
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/PullResponse"}},
          "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "503": {"description": "Offline", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    },
    "/models": {
      "get": {"tags": ["models"], "summary": "List models", "produces": ["application/json"],
        "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ModelsResponse"}}}}
    },
    "/status": {
      "get": {"tags": ["status"], "summary": "Service status", "produces": ["application/json"],
        "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/StatusResponse"}}}}
    }
  },
  "definitions": {
    "ChatTurn": {"type": "object", "properties": {"user": {"type": "string"}, "assistant": {"type": "string"}}},
    "ChatRequest": {"type": "object", "required": ["message"], "properties": {
      "model": {"type": "string", "example": "distilgpt2"},
      "message": {"type": "string", "example": "Tell me a joke"},
      "history": {"type": "array", "items": {"$ref": "#/definitions/ChatTurn"}},
      "persona": {"type": "string"},
      "persona_name": {"type": "string", "example": "pirate"}}},
    "ChatResponse": {"type": "object", "properties": {"reply": {"type": "string"}}},
    "ImageRequest": {"type": "object", "required": ["prompt"], "properties": {
      "model": {"type": "string"}, "prompt": {"type": "string"}, "size": {"type": "integer", "example": 512}}},
    "VisionResponse": {"type": "object", "properties": {"description": {"type": "string", "example": "Detected: tabby cat"}}},
    "PullRequest": {"type": "object", "properties": {"model": {"type": "string"}, "category": {"type": "string", "enum": ["chat", "vision", "image"]}}},
    "PullResponse": {"type": "object", "properties": {"model": {"type": "string"}, "category": {"type": "string"}, "path": {"type": "string"}}},
    "ModelRef": {"type": "object", "properties": {"id": {"type": "string"}, "category": {"type": "string"}, "path": {"type": "string"}, "local": {"type": "boolean"}}},
    "ModelsResponse": {"type": "object", "properties": {
      "defaults": {"type": "array", "items": {"$ref": "#/definitions/ModelRef"}},
      "cached": {"type": "array", "items": {"$ref": "#/definitions/ModelRef"}}}},
    "StatusResponse": {"type": "object", "properties": {
      "instances": {"type": "array", "items": {"type": "object"}},
      "offline": {"type": "boolean"},
      "last_error": {"type": "string"},
      "uptime_seconds": {"type": "integer"},
      "loads_total": {"type": "integer"}}},
    "ErrorResponse": {"type": "object", "properties": {
      "error": {"type": "string"}, "code": {"type": "integer"}, "kind": {"type": "string", "example": "download_unavailable"}}}
  }
}`
