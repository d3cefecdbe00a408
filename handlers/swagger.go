package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers Swagger/OpenAPI endpoints for the notes API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(r gin.IRouter) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>notes-service Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "notes-service", "version": "v0.1.0" },
  "components": {
    "parameters": {
      "token": { "name": "token", "in": "query", "required": true, "schema": { "type": "string" } },
      "id": { "name": "id", "in": "path", "required": true, "schema": { "type": "string", "format": "uuid" } }
    },
    "schemas": {
      "TextRequest": { "type": "object", "required": ["text"], "properties": { "text": { "type": "string" } } },
      "Error": { "type": "object", "properties": { "detail": { "type": "string" } } },
      "Message": { "type": "object", "properties": { "message": { "type": "string" } } }
    }
  },
  "paths": {
    "/notes/create": {
      "post": {
        "summary": "Create a note",
        "parameters": [ { "$ref": "#/components/parameters/token" } ],
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/TextRequest" } } } },
        "responses": { "200": { "description": "{\"id\": \"<uuid>\"}" }, "401": { "description": "Unauthorized or Invalid token" }, "422": { "description": "missing token or text" } }
      }
    },
    "/notes/list": {
      "get": {
        "summary": "List note ids keyed by position",
        "parameters": [ { "$ref": "#/components/parameters/token" } ],
        "responses": { "200": { "description": "{\"0\": \"<uuid>\", ...}" }, "401": { "description": "Unauthorized or Invalid token" } }
      }
    },
    "/notes/{id}": {
      "get": {
        "summary": "Get note content",
        "parameters": [ { "$ref": "#/components/parameters/id" }, { "$ref": "#/components/parameters/token" } ],
        "responses": { "200": { "description": "{\"id\", \"text\"}" }, "401": { "description": "Unauthorized or Invalid token" }, "404": { "description": "Note not found" } }
      }
    },
    "/notes/info/{id}": {
      "get": {
        "summary": "Get note timestamps",
        "parameters": [ { "$ref": "#/components/parameters/id" }, { "$ref": "#/components/parameters/token" } ],
        "responses": { "200": { "description": "{\"created_at\", \"updated_at\"}" }, "401": { "description": "Unauthorized or Invalid token" }, "404": { "description": "Note not found" } }
      }
    },
    "/notes/update/{id}": {
      "patch": {
        "summary": "Replace note text",
        "parameters": [ { "$ref": "#/components/parameters/id" }, { "$ref": "#/components/parameters/token" } ],
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/TextRequest" } } } },
        "responses": { "200": { "description": "Note updated successfully" }, "401": { "description": "Unauthorized or Invalid token" }, "404": { "description": "Note not found" } }
      }
    },
    "/notes/delete/{id}": {
      "delete": {
        "summary": "Delete a note",
        "parameters": [ { "$ref": "#/components/parameters/id" }, { "$ref": "#/components/parameters/token" } ],
        "responses": { "200": { "description": "Note deleted successfully" }, "401": { "description": "Unauthorized or Invalid token" }, "404": { "description": "Note not found" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition format" } } } }
  }
}`
