package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the fact API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>factdeck API docs</title>
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
  "info": { "title": "factdeck", "version": "v0.1.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } }
  },
  "paths": {
    "/api/categories": {
      "get": { "summary": "List known categories", "responses": { "200": { "description": "categories" } } }
    },
    "/api/facts/{category}": {
      "get": {
        "summary": "Get facts, preferring ones not shown recently; shortfall is generated",
        "parameters": [
          { "name": "category", "in": "path", "required": true, "schema": { "type": "string" }, "description": "category key or 'random'" },
          { "name": "count", "in": "query", "schema": { "type": "integer", "default": 3 } }
        ],
        "responses": { "200": { "description": "{facts: [string]}" }, "400": { "description": "bad count" }, "500": { "description": "store or generator failure" } }
      }
    },
    "/api/generate-facts": {
      "post": {
        "summary": "Generate and store facts for a category",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["category"],"properties":{"category":{"type":"string"},"count":{"type":"integer"}}}}}},
        "responses": { "200": { "description": "{message, generated}" }, "400": { "description": "bad body or unknown category" }, "503": { "description": "generation disabled" } }
      }
    },
    "/generate-fact/{topic}": {
      "get": {
        "summary": "Generate one fact not too similar to stored facts for the topic",
        "parameters": [ { "name": "topic", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "{fact}" }, "400": { "description": "no unique fact after retries" }, "500": { "description": "generator failure" } }
      }
    },
    "/facts/{topic}": {
      "get": {
        "summary": "One stored fact for the topic, or an empty list",
        "parameters": [ { "name": "topic", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "[string]" } }
      }
    },
    "/api/facts/snapshot/{category}": {
      "post": {
        "summary": "Export a category to object storage",
        "security": [ { "bearer": [] } ],
        "parameters": [ { "name": "category", "in": "path", "required": true, "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "{key, url, count}" }, "503": { "description": "object storage not configured" } }
      }
    },
    "/api/auth/signup": {
      "post": {
        "summary": "Create an account",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["name","email","password"],"properties":{"name":{"type":"string"},"email":{"type":"string"},"password":{"type":"string","minLength":8}}}}}},
        "responses": { "201": { "description": "token and user" }, "400": { "description": "invalid input" }, "409": { "description": "email taken" } }
      }
    },
    "/api/auth/login": {
      "post": {
        "summary": "Log in with email and password",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "token and user" }, "400": { "description": "missing fields" }, "401": { "description": "bad credentials" } }
      }
    },
    "/api/auth/google": {
      "post": {
        "summary": "Sign in with a Google ID token",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["idToken"],"properties":{"idToken":{"type":"string"}}}}}},
        "responses": { "200": { "description": "token and user" }, "401": { "description": "invalid ID token" }, "409": { "description": "email belongs to another account" }, "503": { "description": "Google sign-in not configured" } }
      }
    },
    "/api/auth/logout": {
      "post": { "summary": "Revoke the current access token", "security": [ { "bearer": [] } ], "responses": { "200": { "description": "logged out" } } }
    },
    "/api/auth/preferences": {
      "patch": { "summary": "Replace display preferences", "security": [ { "bearer": [] } ], "responses": { "200": { "description": "updated user" } } }
    },
    "/api/auth/me": {
      "get": { "summary": "Current user", "security": [ { "bearer": [] } ], "responses": { "200": { "description": "user" } } }
    },
    "/api/facts/save": {
      "post": {
        "summary": "Save a fact to the user's list",
        "security": [ { "bearer": [] } ],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["fact"],"properties":{"fact":{"type":"string"},"category":{"type":"string"},"notes":{"type":"string"}}}}}},
        "responses": { "200": { "description": "saved" } }
      }
    },
    "/api/facts/saved": {
      "get": { "summary": "List saved facts", "security": [ { "bearer": [] } ], "responses": { "200": { "description": "{status, facts}" } } }
    },
    "/api/facts/saved/{id}": {
      "delete": { "summary": "Delete a saved fact", "security": [ { "bearer": [] } ], "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
