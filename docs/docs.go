// Package docs holds the Swagger document served at /swagger/doc.json.
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
                "description": "Authenticate with phone and password and receive a JWT",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "User login",
                "parameters": [
                    {"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "User logout",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/account": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "List accounts",
                "parameters": [
                    {"type": "string", "description": "Account type", "name": "type", "in": "query"},
                    {"type": "string", "description": "Name substring", "name": "name", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Account"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Create account",
                "parameters": [
                    {"description": "Account details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Account"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Credits the receiver and debits the sender in one transaction. Sending to your own phone is a self-credit.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Post transfer",
                "parameters": [
                    {"type": "string", "name": "fromName", "in": "formData"},
                    {"type": "string", "name": "fromEmail", "in": "formData"},
                    {"type": "string", "name": "fromPhone", "in": "formData", "required": true},
                    {"type": "string", "name": "toName", "in": "formData"},
                    {"type": "string", "name": "toEmail", "in": "formData"},
                    {"type": "string", "name": "toPhone", "in": "formData", "required": true},
                    {"type": "string", "name": "amount", "in": "formData", "required": true},
                    {"type": "string", "name": "reason", "in": "formData"},
                    {"type": "string", "name": "remarks", "in": "formData"},
                    {"type": "file", "name": "files[]", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/account/balance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Account balance",
                "parameters": [
                    {"type": "string", "description": "Account id, defaults to the caller", "name": "userId", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/account/transaction": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Transaction history",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "query", "required": true},
                    {"type": "string", "name": "name", "in": "query"},
                    {"type": "number", "name": "minAmount", "in": "query"},
                    {"type": "number", "name": "maxAmount", "in": "query"},
                    {"type": "string", "name": "fromDate", "in": "query"},
                    {"type": "string", "name": "toDate", "in": "query"},
                    {"type": "string", "name": "reason", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"enum": ["all", "credit", "debit"], "type": "string", "name": "transactionType", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/admin/account": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Per-user totals over a date window plus the all-time balance",
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Admin rollup",
                "parameters": [
                    {"type": "string", "name": "fromDate", "in": "query"},
                    {"type": "string", "name": "toDate", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "user", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "formType", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "expenseType", "in": "query"},
                    {"type": "string", "description": "Comma separated statuses", "name": "status", "in": "query"},
                    {"type": "number", "name": "minAmount", "in": "query"},
                    {"type": "number", "name": "maxAmount", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}
            }
        },
        "/form/{userId}/{family}/{category}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Appends a pending line item to the user's document for the day and debits the user's own ledger",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Expense"],
                "summary": "Submit expense",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"enum": ["office", "travel", "toPay"], "type": "string", "name": "family", "in": "path", "required": true},
                    {"type": "string", "name": "category", "in": "path", "required": true},
                    {"type": "string", "name": "amount", "in": "formData", "required": true},
                    {"type": "string", "name": "date", "in": "formData"},
                    {"type": "string", "name": "details", "in": "formData"},
                    {"type": "file", "name": "files[]", "in": "formData"},
                    {"type": "file", "name": "paymentFiles[]", "in": "formData"},
                    {"type": "file", "name": "invoiceFiles[]", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ExpenseDocument"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/users/expenses": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Expense"],
                "summary": "Review expense",
                "parameters": [
                    {"type": "string", "name": "expenseType", "in": "formData", "required": true},
                    {"type": "string", "name": "userId", "in": "formData", "required": true},
                    {"type": "string", "name": "date", "in": "formData", "required": true},
                    {"type": "string", "name": "formType", "in": "formData", "required": true},
                    {"type": "string", "name": "expenseId", "in": "formData", "required": true},
                    {"type": "string", "name": "documentId", "in": "formData"},
                    {"enum": ["approved", "rejected"], "type": "string", "name": "status", "in": "formData"},
                    {"type": "string", "name": "message", "in": "formData"},
                    {"type": "string", "name": "siteName", "in": "formData"},
                    {"type": "string", "name": "phone", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Expense"],
                "summary": "Attach files",
                "parameters": [
                    {"description": "Files to attach", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AttachFilesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/limits/{userId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Limits"],
                "summary": "Get expense limit",
                "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ExpenseLimit"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Limits"],
                "summary": "Update expense limit",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"description": "Limit configuration", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ExpenseLimit"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ExpenseLimit"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "type": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handlers.AttachFilesRequest": {
            "type": "object",
            "properties": {
                "schemaType": {"type": "string", "example": "office"},
                "documentId": {"type": "string"},
                "expenseType": {"type": "string", "example": "food"},
                "filedId": {"type": "string"},
                "files": {
                    "type": "object",
                    "properties": {
                        "locationFiles": {"type": "array", "items": {"type": "string"}},
                        "paymentFiles": {"type": "array", "items": {"type": "string"}},
                        "invoiceFiles": {"type": "array", "items": {"type": "string"}}
                    }
                }
            }
        },
        "services.LoginRequest": {
            "type": "object",
            "required": ["password", "phone"],
            "properties": {
                "phone": {"type": "string", "example": "9876543210"},
                "password": {"type": "string", "minLength": 6, "example": "password123"}
            }
        },
        "services.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expiresAt": {"type": "string"},
                "user": {"$ref": "#/definitions/models.Account"}
            }
        },
        "services.CreateAccountRequest": {
            "type": "object",
            "required": ["name", "password", "phone", "type"],
            "properties": {
                "name": {"type": "string", "example": "Ravi Kumar"},
                "phone": {"type": "string", "example": "9876543210"},
                "email": {"type": "string", "example": "ravi@example.com"},
                "type": {"type": "string", "enum": ["admin", "manager", "employee", "toPay"]},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "models.Account": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "type": {"type": "string"},
                "credit": {"type": "array", "items": {"type": "object"}},
                "debit": {"type": "array", "items": {"type": "object"}},
                "expense": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.ExpenseDocument": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "family": {"type": "string"},
                "createdBy": {"type": "string"},
                "date": {"type": "string"},
                "categories": {"type": "object"}
            }
        },
        "models.ExpenseLimit": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "categories": {"type": "object", "additionalProperties": {"type": "string"}},
                "max_limit": {"type": "string"},
                "status": {"type": "string", "enum": ["Active", "Inactive"]},
                "updatedAt": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "CashWise API",
	Description:      "Multi-tenant expense and ledger service",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
