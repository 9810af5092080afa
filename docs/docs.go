// Package docs registers the groupsplit OpenAPI document with swag.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/groups": {
            "get": {
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "List my groups",
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page", "name": "per_page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Create a new group",
                "parameters": [
                    {"description": "Group creation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/group.CreateGroupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{groupId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Get group by ID",
                "parameters": [{"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{groupId}/members": {
            "get": {
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "List group members",
                "parameters": [{"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Add a member",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"description": "Member", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/group.AddMemberRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/groups/{groupId}/expenses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "List group expenses",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Month (YYYY-MM)", "name": "month", "in": "query"},
                    {"type": "string", "description": "From date (YYYY-MM-DD)", "name": "from", "in": "query"},
                    {"type": "string", "description": "To date (YYYY-MM-DD)", "name": "to", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Create an expense",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"description": "Expense creation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/expense.CreateExpenseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{groupId}/balances": {
            "get": {
                "produces": ["application/json"],
                "tags": ["balances"],
                "summary": "Get group balances",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Month (YYYY-MM)", "name": "month", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/groups/{groupId}/settlements": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settlements"],
                "summary": "Record a settlement",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"description": "Settlement", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/settlement.RecordSettlementRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/groups/{groupId}/settlements/suggestions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["settlements"],
                "summary": "Suggest settlements",
                "parameters": [{"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/groups/{groupId}/expenses/export.csv": {
            "get": {
                "produces": ["text/csv"],
                "tags": ["expenses"],
                "summary": "Export expenses as CSV",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Month (YYYY-MM)", "name": "month", "in": "query"}
                ],
                "responses": {"200": {"description": "CSV file", "schema": {"type": "string"}}}
            }
        },
        "/groups/{groupId}/recurring": {
            "get": {
                "produces": ["application/json"],
                "tags": ["recurring"],
                "summary": "List recurring expenses",
                "parameters": [{"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recurring"],
                "summary": "Create a recurring expense",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"description": "Recurring expense", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/recurring.CreateTemplateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/groups/{groupId}/recurring/month": {
            "get": {
                "produces": ["application/json"],
                "tags": ["recurring"],
                "summary": "Recurring expenses for a month",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Month (YYYY-MM), defaults to the current month", "name": "month", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        },
        "/groups/{groupId}/recurring/{recurringId}/confirm": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recurring"],
                "summary": "Confirm a recurring expense",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "groupId", "in": "path", "required": true},
                    {"type": "string", "description": "Recurring expense ID", "name": "recurringId", "in": "path", "required": true},
                    {"description": "Month and amount", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/recurring.ConfirmRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.APIResponse"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "List my notifications",
                "parameters": [
                    {"type": "boolean", "description": "Only unread", "name": "unread_only", "in": "query"},
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page", "name": "per_page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.APIResponse"}}}
            }
        }
    },
    "definitions": {
        "response.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "response.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"$ref": "#/definitions/response.APIError"}
            }
        },
        "group.CreateGroupRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "description": {"type": "string"}, "creator_name": {"type": "string"}}
        },
        "group.AddMemberRequest": {
            "type": "object",
            "properties": {"user_id": {"type": "string"}, "user_name": {"type": "string"}, "role": {"type": "string"}}
        },
        "expense.SplitParticipant": {
            "type": "object",
            "properties": {"user_id": {"type": "string"}, "amount": {"type": "number"}, "percentage": {"type": "number"}}
        },
        "expense.CreateExpenseRequest": {
            "type": "object",
            "properties": {
                "paid_by": {"type": "string"},
                "amount": {"type": "number"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "split_type": {"type": "string", "enum": ["equal", "custom", "one_owes_all", "percentage"]},
                "expense_date": {"type": "string"},
                "notes": {"type": "string"},
                "participants": {"type": "array", "items": {"$ref": "#/definitions/expense.SplitParticipant"}}
            }
        },
        "recurring.CreateTemplateRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "default_amount": {"type": "number"},
                "category": {"type": "string"},
                "split_type": {"type": "string", "enum": ["equal", "custom", "one_owes_all", "percentage"]},
                "paid_by": {"type": "string"},
                "participants": {"type": "array", "items": {"$ref": "#/definitions/expense.SplitParticipant"}}
            }
        },
        "recurring.ConfirmRequest": {
            "type": "object",
            "properties": {"month": {"type": "string"}, "amount": {"type": "number"}}
        },
        "settlement.RecordSettlementRequest": {
            "type": "object",
            "properties": {
                "from": {"type": "string"},
                "to": {"type": "string"},
                "amount": {"type": "number"},
                "notes": {"type": "string"},
                "settled_on": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "groupsplit API",
	Description:      "Shared expenses, balances and settle-up suggestions for groups.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
