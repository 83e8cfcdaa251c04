// Package docs registers the OpenAPI document served at /swagger/*any.
// Regenerate with: swag init -g internal/http/router.go -o internal/docs
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
        "/versions/1": {
            "get": {
                "description": "Returns every version registered by the route walker, keyed by controller prefix.",
                "produces": ["application/json"],
                "tags": ["Governance"],
                "summary": "List registered API versions",
                "operationId": "listVersions",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.VersionsResponse"}
                    }
                }
            }
        },
        "/accesslogs/1": {
            "get": {
                "description": "Returns a page of persisted access logs, newest first.",
                "produces": ["application/json"],
                "tags": ["Governance"],
                "summary": "List access logs (paginated)",
                "operationId": "listAccessLogs",
                "parameters": [
                    {"type": "string", "example": "ops-1", "description": "Caller identity", "name": "X-User-ID", "in": "header", "required": true},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "page_size", "in": "query"},
                    {"type": "string", "example": "/user/2", "description": "Request path", "name": "path", "in": "query"},
                    {"type": "string", "description": "Authenticated user", "name": "user_id", "in": "query"},
                    {"type": "integer", "example": 1001, "description": "Classified error code", "name": "error_code", "in": "query"},
                    {"type": "boolean", "description": "Only failed requests", "name": "failed", "in": "query"},
                    {"type": "string", "description": "RFC 3339 lower bound on access time", "name": "since", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.ListAccessLogsResponse"}
                    }
                }
            }
        },
        "/accesslog/1": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Governance"],
                "summary": "Get one access log",
                "operationId": "getAccessLog",
                "parameters": [
                    {"type": "string", "example": "ops-1", "description": "Caller identity", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "format": "uuid", "description": "Access log ID (UUID)", "name": "id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/domain.AccessLog"}
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.AccessLog": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "access_time": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "time_cost": {"type": "integer"},
                "client_host": {"type": "string"},
                "user_id": {"type": "string"},
                "params": {"type": "string"},
                "path": {"type": "string"},
                "method": {"type": "string"},
                "api_version": {"type": "integer"},
                "platform": {"type": "integer"},
                "server_id": {"type": "string"},
                "status": {"type": "integer"},
                "error_code": {"type": "integer"},
                "error_msg": {"type": "string"},
                "request_id": {"type": "string"},
                "trace_id": {"type": "string"},
                "locale": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "errorCode": {"type": "integer", "example": 4210},
                "errorMsg": {"type": "string", "example": "invalid token"}
            }
        },
        "handlers.ListAccessLogsResponse": {
            "type": "object",
            "properties": {
                "access_logs": {"type": "array", "items": {"$ref": "#/definitions/domain.AccessLog"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_next": {"type": "boolean"}
            }
        },
        "handlers.VersionsResponse": {
            "type": "object",
            "properties": {
                "versions": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"type": "integer"}}
                },
                "latest": {
                    "type": "object",
                    "additionalProperties": {"type": "integer"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "HTTP Governance API",
	Description:      "Version registry and access log queries. Failures are answered with 200 and an errorCode/errorMsg body.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
