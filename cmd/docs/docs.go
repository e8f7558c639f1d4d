// Package docs registers the swagger document served under /swagger.
// Regenerate with `swag init -g cmd/settlement_backend/main.go -o cmd/docs`.
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
        "/tenants/{tenant_id}/sales": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["sales"],
                "summary": "Record a POS sale",
                "parameters": [
                    {"type": "string", "name": "tenant_id", "in": "path", "required": true},
                    {"name": "sale", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid sale"}, "409": {"description": "Session not open"}}
            }
        },
        "/tenants/{tenant_id}/invoices/{invoice_id}/payments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["invoices"],
                "summary": "Post a batch of payments against an invoice",
                "parameters": [
                    {"type": "string", "name": "tenant_id", "in": "path", "required": true},
                    {"type": "string", "name": "invoice_id", "in": "path", "required": true},
                    {"name": "payments", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "Replayed batch"}, "201": {"description": "Posted"}, "409": {"description": "Conflict"}, "503": {"description": "State uncertain, re-query"}}
            }
        },
        "/tenants/{tenant_id}/clients/{client_id}/balance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["ledger"],
                "summary": "Get a client's balance",
                "parameters": [
                    {"type": "string", "name": "tenant_id", "in": "path", "required": true},
                    {"type": "string", "name": "client_id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
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
	Title:            "Settlement Engine API",
	Description:      "Ledger, invoice settlement and POS cash session API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
