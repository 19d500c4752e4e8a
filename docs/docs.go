// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
                "description": "Checks the administrator credentials, returns an access token and sets it as the admin session cookie",
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Admin login",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Login successful", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid request format or validation error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Invalid username or password", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Admin logout",
                "responses": {
                    "200": {"description": "Logged out", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/admin/records": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List all student records",
                "responses": {
                    "200": {"description": "Records retrieved successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Delete all student records",
                "responses": {
                    "200": {"description": "All student data deleted successfully!", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/admin/records/import": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Imports every data row of a .csv file with header id,branch,year,sem,sub,subjectcode,type,oclass. Either all rows are stored or none.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Upload a student allotment CSV",
                "parameters": [
                    {"type": "file", "description": "CSV file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Students uploaded successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Upload failed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Upload failed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/admin/records/{idno}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Delete a student's records",
                "parameters": [
                    {"type": "string", "description": "Student ID number", "name": "idno", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Student deleted successfully", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/students/lookup": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Look up a student's allotment",
                "parameters": [
                    {"description": "Student ID number", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LookupRequest"}}
                ],
                "responses": {
                    "200": {"description": "Records found", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "No data found for given ID Number", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/{idno}/records": {
            "get": {
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Get a student's allotment",
                "parameters": [
                    {"type": "string", "description": "Student ID number", "name": "idno", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Records found", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "No data found for given ID Number", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string"},
                "data": {},
                "error": {"$ref": "#/definitions/dto.ErrorDetail"},
                "timestamp": {"type": "string"}
            }
        },
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "RES_001"},
                "message": {"type": "string", "example": "No data found for given ID Number"},
                "field": {"type": "string"},
                "severity": {"type": "string", "example": "ERROR"},
                "details": {}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {"$ref": "#/definitions/dto.ErrorDetail"},
                "timestamp": {"type": "string"}
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "username": {"type": "string", "example": "registrar"},
                "password": {"type": "string", "example": "s3cret"}
            }
        },
        "dto.LookupRequest": {
            "type": "object",
            "properties": {
                "idno": {"type": "string", "example": "S1"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT token for authorization",
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
	Schemes:          []string{"http", "https"},
	Title:            "Subject Allotment API",
	Description:      "Student subject-allotment records: CSV import, admin maintenance and public lookup",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
