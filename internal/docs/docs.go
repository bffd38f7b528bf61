// Package docs registers the OpenAPI description of the shelter API with
// swag so that gin-swagger can serve it under /swagger/.
//
// Regenerate from the handler annotations with:
//
//	swag init -g cmd/shelter-api/main.go -o internal/docs --outputTypes go
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Verify credentials",
                "operationId": "login",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/animals": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "List all animals",
                "operationId": "listAnimals",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 200, "minimum": 1, "type": "integer", "default": 50, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListAnimalsResponse"}, "headers": {"ETag": {"type": "string", "description": "Weak ETag for current result"}}},
                    "304": {"description": "Not Modified"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Register an animal",
                "operationId": "createAnimal",
                "parameters": [
                    {"description": "Animal", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateAnimalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Animal"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/animals/{id}/status": {
            "put": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Change an animal's status",
                "operationId": "updateAnimalStatus",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Animal ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateAnimalStatusRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Animal not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/requests": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "List all adoption requests",
                "operationId": "listRequests",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 200, "minimum": 1, "type": "integer", "default": 50, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListRequestsResponse"}},
                    "304": {"description": "Not Modified"}
                }
            }
        },
        "/admin/requests/{id}/approve": {
            "post": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Approve an adoption request",
                "operationId": "approveRequest",
                "parameters": [{"minimum": 1, "type": "integer", "description": "Request ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Request not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Request not pending or animal unavailable (strict mode)", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/requests/{id}/reject": {
            "post": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Reject an adoption request",
                "operationId": "rejectRequest",
                "parameters": [{"minimum": 1, "type": "integer", "description": "Request ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Request not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Request not pending (strict mode)", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/client/animals": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["Client"],
                "summary": "List adoptable animals",
                "operationId": "listAvailableAnimals",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListAnimalsResponse"}}
                }
            }
        },
        "/client/requests": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["Client"],
                "summary": "List my adoption requests",
                "operationId": "listMyRequests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListRequestsResponse"}}
                }
            },
            "post": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Client"],
                "summary": "File an adoption request",
                "operationId": "createAdoptionRequest",
                "parameters": [
                    {"type": "string", "description": "Idempotency key for safe retries (UUID recommended)", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Target animal", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateAdoptionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Replayed", "schema": {"$ref": "#/definitions/domain.AdoptionRequest"}, "headers": {"Idempotency-Replayed": {"type": "string"}}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.AdoptionRequest"}},
                    "409": {"description": "Animal unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/client/requests/{id}/cancel": {
            "post": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["Client"],
                "summary": "Cancel one of my pending requests",
                "operationId": "cancelRequest",
                "parameters": [{"minimum": 1, "type": "integer", "description": "Request ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Missing, not owned, or no longer pending", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Animal": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "age": {"type": "integer"},
                "health_status": {"type": "string"},
                "arrival_date": {"type": "string"},
                "status": {"type": "string", "enum": ["available", "adopted", "removed"]},
                "status_reason": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "username": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "client"]},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "domain.AdoptionRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "animal_id": {"type": "integer"},
                "client_id": {"type": "integer"},
                "request_date": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "approved", "rejected", "cancelled"]},
                "updated_at": {"type": "string"}
            }
        },
        "domain.RequestView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "animal_id": {"type": "integer"},
                "client_id": {"type": "integer"},
                "request_date": {"type": "string"},
                "status": {"type": "string"},
                "client_name": {"type": "string"},
                "client_phone": {"type": "string"},
                "animal_name": {"type": "string"}
            }
        },
        "handlers.CreateAdoptionRequest": {
            "type": "object",
            "required": ["animal_id"],
            "properties": {"animal_id": {"type": "integer", "minimum": 1, "example": 2}}
        },
        "handlers.CreateAnimalRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Rex"},
                "species": {"type": "string", "example": "dog"},
                "breed": {"type": "string", "example": "Beagle"},
                "age": {"type": "integer", "example": 5},
                "health_status": {"type": "string", "example": "healthy"},
                "arrival_date": {"type": "string", "example": "2024-03-01"}
            }
        },
        "handlers.UpdateAnimalStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["available", "adopted", "removed"], "example": "removed"},
                "reason": {"type": "string", "example": "transferred to partner shelter"}
            }
        },
        "handlers.LoginRequest": {
            "type": "object",
            "required": ["username", "password", "role"],
            "properties": {
                "username": {"type": "string", "example": "client1"},
                "password": {"type": "string", "example": "pass1"},
                "role": {"type": "string", "enum": ["admin", "client"], "example": "client"}
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
        "handlers.ListAnimalsResponse": {
            "type": "object",
            "properties": {
                "animals": {"type": "array", "items": {"$ref": "#/definitions/domain.Animal"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.ListRequestsResponse": {
            "type": "object",
            "properties": {
                "requests": {"type": "array", "items": {"$ref": "#/definitions/domain.RequestView"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"},
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "adoption request not found"}
            }
        }
    },
    "securityDefinitions": {
        "BasicAuth": {"type": "basic"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Shelter API",
	Description:      "Animal shelter registry and adoption workflow.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
