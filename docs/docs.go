// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration Info", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.RegisterInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in a user",
                "parameters": [
                    {"description": "Login Info", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.LoginInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.TokenResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/games": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "List game cards",
                "parameters": [
                    {"type": "string", "description": "Search query for game title", "name": "q", "in": "query"},
                    {"type": "string", "description": "Filter by game type", "name": "game_type", "in": "query"},
                    {"type": "boolean", "description": "Only games with open slots", "name": "open_only", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Items per page", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PaginatedCardResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Create a new game",
                "parameters": [
                    {"description": "Game Info", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.GameInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/card.View"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/games/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Get a single game card",
                "parameters": [
                    {"type": "string", "description": "Game ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/card.View"}},
                    "404": {"description": "Game not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/games/{id}/join": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Join a game",
                "parameters": [
                    {"type": "string", "description": "Game ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.JoinResponse"}},
                    "401": {"description": "Sign in to join a game", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Game not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Game is full, already joined, or changed concurrently", "schema": {"$ref": "#/definitions/handler.JoinResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/games/{id}/events": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["games"],
                "summary": "Stream card updates",
                "parameters": [
                    {"type": "string", "description": "Game ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "event stream", "schema": {"type": "string"}},
                    "404": {"description": "Game not found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "card.Notice": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "card.View": {
            "type": "object",
            "properties": {
                "action_enabled": {"type": "boolean"},
                "action_label": {"type": "string"},
                "creator": {"type": "string"},
                "date": {"type": "string"},
                "description": {"type": "string"},
                "duration": {"type": "integer"},
                "game_type": {"type": "string"},
                "id": {"type": "string"},
                "joined_players": {"type": "array", "items": {"type": "string"}},
                "players_needed": {"type": "integer"},
                "state": {"type": "string"},
                "title": {"type": "string"},
                "when_and_where": {"type": "string"}
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "An error message"}
            }
        },
        "handler.GameInput": {
            "type": "object",
            "required": ["date", "game_type", "players_needed", "title"],
            "properties": {
                "date": {"type": "string", "example": "2026-10-25T10:00:00Z"},
                "description": {"type": "string"},
                "duration": {"type": "integer", "minimum": 0, "example": 90},
                "game_type": {"type": "string", "example": "soccer"},
                "players_needed": {"type": "integer", "minimum": 1, "maximum": 100, "example": 4},
                "rental_id": {"type": "string"},
                "title": {"type": "string", "example": "Sunday pickup"}
            }
        },
        "handler.JoinResponse": {
            "type": "object",
            "properties": {
                "card": {"$ref": "#/definitions/card.View"},
                "error": {"type": "string"},
                "notice": {"$ref": "#/definitions/card.Notice"}
            }
        },
        "handler.LoginInput": {
            "type": "object",
            "required": ["login", "password"],
            "properties": {
                "login": {"type": "string", "example": "testuser"},
                "password": {"type": "string", "example": "password123"}
            }
        },
        "handler.PaginatedCardResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/card.View"}},
                "meta": {"$ref": "#/definitions/handler.PaginationMeta"}
            }
        },
        "handler.PaginationMeta": {
            "type": "object",
            "properties": {
                "current_page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "handler.RegisterInput": {
            "type": "object",
            "required": ["email", "nickname", "password"],
            "properties": {
                "email": {"type": "string", "example": "test@example.com"},
                "nickname": {"type": "string", "example": "testuser"},
                "password": {"type": "string", "minLength": 8, "example": "password123"}
            }
        },
        "handler.TokenResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Game Board API",
	Description:      "Browse recreational games and join open slots.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
