// Package docs registers the portal's Swagger spec with swag so the
// gin-swagger UI can serve it. Refresh it with `go generate ./cmd/server`
// after changing handler annotations.
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
        "/api/v1/admin/bills": {
            "post": {
                "summary": "Issue a bill",
                "tags": [
                    "admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.CreateBillRequest"
                        },
                        "required": true,
                        "description": "Bill readings"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/billing.BillResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/admin/bills/{id}/readings": {
            "put": {
                "summary": "Correct a bill's readings or rate",
                "description": "Units and amount are recomputed. Paid bills cannot be revised.",
                "tags": [
                    "admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Bill ID"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.ReviseReadingsRequest"
                        },
                        "required": true,
                        "description": "Replacement values"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/billing.BillResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/admin/complaints/pending-count": {
            "get": {
                "summary": "Count open complaints",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/support.PendingCountResult"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/admin/complaints/{id}": {
            "put": {
                "summary": "Respond to a complaint",
                "tags": [
                    "admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Complaint ID"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.RespondRequest"
                        },
                        "required": true,
                        "description": "Status and response"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/support.ComplaintResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/admin/customers": {
            "get": {
                "summary": "List customer profiles",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page number"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/identity.ProfileResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/admin/customers/{id}": {
            "put": {
                "summary": "Update a customer's profile",
                "tags": [
                    "admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Profile ID"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.AdminUpdateProfileRequest"
                        },
                        "required": true,
                        "description": "Fields to change"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/identity.ProfileResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/admin/dashboard": {
            "get": {
                "summary": "Portal-wide totals",
                "tags": [
                    "admin"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dashboard.Overview"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/admin/payments/{id}/review": {
            "put": {
                "summary": "Review a payment",
                "description": "A failed payment returns a paid bill to pending",
                "tags": [
                    "admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Payment ID"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.ReviewPaymentRequest"
                        },
                        "required": true,
                        "description": "Review outcome"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/payment.ReviewPaymentResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "summary": "Log in",
                "tags": [
                    "auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.LoginRequest"
                        },
                        "required": true,
                        "description": "Login credentials"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/identity.TokenResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "summary": "Log out",
                "description": "Revokes the access token and, when supplied, the refresh token",
                "tags": [
                    "auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.LogoutRequest"
                        },
                        "required": false,
                        "description": "Refresh token to revoke"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "summary": "Exchange a refresh token for a new token pair",
                "tags": [
                    "auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.RefreshRequest"
                        },
                        "required": true,
                        "description": "Refresh token"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/identity.TokenResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/auth/register": {
            "post": {
                "summary": "Register a customer account",
                "tags": [
                    "auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.RegisterRequest"
                        },
                        "required": true,
                        "description": "Signup details"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/identity.RegisterResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/bills": {
            "get": {
                "summary": "List bills",
                "description": "Customers see their own bills; admins may filter by customer",
                "tags": [
                    "bills"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "pending, paid or overdue"
                    },
                    {
                        "name": "customer_id",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Customer profile ID"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page number"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/billing.BillResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/bills/{id}": {
            "get": {
                "summary": "Get a bill",
                "tags": [
                    "bills"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Bill ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/billing.BillResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/bills/{id}/payments": {
            "post": {
                "summary": "Pay a bill",
                "description": "Idempotency-Key header to make retries safe.",
                "tags": [
                    "payments"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Bill ID"
                    },
                    {
                        "name": "Idempotency-Key",
                        "in": "header",
                        "type": "string",
                        "required": false,
                        "description": "Client request key"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.RecordPaymentRequest"
                        },
                        "required": true,
                        "description": "Payment details"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/payment.RecordPaymentResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/complaints": {
            "post": {
                "summary": "File a complaint",
                "tags": [
                    "complaints"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.FileComplaintRequest"
                        },
                        "required": true,
                        "description": "Complaint"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/support.ComplaintResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "get": {
                "summary": "List complaints",
                "description": "Customers see their own complaints; admins see all",
                "tags": [
                    "complaints"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "open, in_progress, resolved or closed"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page number"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/support.ComplaintResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/complaints/{id}/attachment": {
            "post": {
                "summary": "Attach a file to a complaint",
                "description": "Accepts one image or PDF in the \"file\" form field",
                "tags": [
                    "complaints"
                ],
                "consumes": [
                    "multipart/form-data"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Complaint ID"
                    },
                    {
                        "name": "file",
                        "in": "formData",
                        "type": "file",
                        "required": true,
                        "description": "Image or PDF"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/support.ComplaintResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "413": {
                        "description": "Request Entity Too Large",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "get": {
                "summary": "Get a download link for a complaint's attachment",
                "tags": [
                    "complaints"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Complaint ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/support.AttachmentURLResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "error": {
                                            "$ref": "#/definitions/dto.ErrorInfo"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/dashboard": {
            "get": {
                "summary": "The caller's balance and activity",
                "tags": [
                    "dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dashboard.CustomerSummary"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/payments": {
            "get": {
                "summary": "List payments",
                "description": "Customers see their own payments; admins see all",
                "tags": [
                    "payments"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "bill_id",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Bill ID"
                    },
                    {
                        "name": "customer_id",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Customer profile ID"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Payment status"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page number"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/payment.PaymentResponse"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/profile": {
            "get": {
                "summary": "Get the caller's profile",
                "tags": [
                    "profile"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/identity.ProfileResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "put": {
                "summary": "Update the caller's contact details",
                "tags": [
                    "profile"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/handler.UpdateMyProfileRequest"
                        },
                        "required": true,
                        "description": "Contact fields"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/identity.ProfileResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "summary": "Liveness check",
                "tags": [
                    "system"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/handler.HealthResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "description": "Checks the database and cache; 503 when any is down",
                "tags": [
                    "system"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/handler.ReadinessResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/handler.ReadinessResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "billing.BillResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "meter_number": {
                    "type": "string"
                },
                "previous_reading": {
                    "type": "string",
                    "example": "0.00"
                },
                "current_reading": {
                    "type": "string",
                    "example": "0.00"
                },
                "rate_per_unit": {
                    "type": "string",
                    "example": "0.00"
                },
                "units_consumed": {
                    "type": "string",
                    "example": "0.00"
                },
                "amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "amount_display": {
                    "type": "string"
                },
                "billing_month": {
                    "type": "string"
                },
                "due_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "status": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dashboard.CustomerSummary": {
            "type": "object",
            "properties": {
                "outstanding_balance": {
                    "type": "string",
                    "example": "0.00"
                },
                "outstanding_balance_display": {
                    "type": "string"
                },
                "unpaid_bills": {
                    "type": "integer"
                },
                "latest_bill": {
                    "$ref": "#/definitions/billing.BillResponse"
                },
                "open_complaints": {
                    "type": "integer"
                }
            }
        },
        "dashboard.Overview": {
            "type": "object",
            "properties": {
                "total_customers": {
                    "type": "integer"
                },
                "total_bills": {
                    "type": "integer"
                },
                "pending_bills": {
                    "type": "integer"
                },
                "overdue_bills": {
                    "type": "integer"
                },
                "total_collected": {
                    "type": "string",
                    "example": "0.00"
                },
                "total_collected_display": {
                    "type": "string"
                },
                "pending_complaints": {
                    "type": "integer"
                }
            }
        },
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "request_id": {
                    "type": "string"
                },
                "details": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.ValidationDetail"
                    }
                }
            }
        },
        "dto.Meta": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_pages": {
                    "type": "integer"
                }
            }
        },
        "dto.Response": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "data": {},
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "meta": {
                    "$ref": "#/definitions/dto.Meta"
                }
            }
        },
        "dto.ValidationDetail": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "handler.AdminUpdateProfileRequest": {
            "type": "object",
            "properties": {
                "full_name": {
                    "type": "string",
                    "minLength": 1,
                    "maxLength": 200
                },
                "phone": {
                    "type": "string",
                    "maxLength": 50
                },
                "address": {
                    "type": "string",
                    "maxLength": 500
                },
                "meter_number": {
                    "type": "string",
                    "maxLength": 50
                },
                "is_admin": {
                    "type": "boolean"
                }
            }
        },
        "handler.CreateBillRequest": {
            "type": "object",
            "properties": {
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "meter_number": {
                    "type": "string",
                    "minLength": 1,
                    "maxLength": 50
                },
                "previous_reading": {
                    "type": "string",
                    "example": "0.00"
                },
                "current_reading": {
                    "type": "string",
                    "example": "0.00"
                },
                "rate_per_unit": {
                    "type": "string",
                    "example": "0.00"
                },
                "billing_month": {
                    "type": "string",
                    "maxLength": 50
                },
                "due_date": {
                    "type": "string",
                    "format": "date-time"
                }
            },
            "required": [
                "customer_id",
                "current_reading",
                "billing_month"
            ]
        },
        "handler.FileComplaintRequest": {
            "type": "object",
            "properties": {
                "subject": {
                    "type": "string",
                    "maxLength": 200
                },
                "description": {
                    "type": "string",
                    "maxLength": 5000
                },
                "priority": {
                    "type": "string"
                }
            },
            "required": [
                "subject",
                "description"
            ]
        },
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "version": {
                    "type": "string"
                },
                "go_version": {
                    "type": "string"
                },
                "uptime": {
                    "type": "string"
                }
            }
        },
        "handler.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "email",
                "password"
            ]
        },
        "handler.LogoutRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {
                    "type": "string"
                }
            }
        },
        "handler.ReadinessResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "checks": {
                    "type": "string"
                }
            }
        },
        "handler.RecordPaymentRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "payment_method": {
                    "type": "string"
                },
                "transaction_id": {
                    "type": "string",
                    "maxLength": 100
                },
                "payment_date": {
                    "type": "string",
                    "format": "date-time"
                }
            },
            "required": [
                "amount",
                "payment_method"
            ]
        },
        "handler.RefreshRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {
                    "type": "string"
                }
            },
            "required": [
                "refresh_token"
            ]
        },
        "handler.RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string",
                    "maxLength": 200
                },
                "password": {
                    "type": "string",
                    "minLength": 8,
                    "maxLength": 72
                },
                "full_name": {
                    "type": "string",
                    "maxLength": 200
                },
                "phone": {
                    "type": "string",
                    "maxLength": 50
                },
                "address": {
                    "type": "string",
                    "maxLength": 500
                }
            },
            "required": [
                "email",
                "password",
                "full_name"
            ]
        },
        "handler.RespondRequest": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "admin_response": {
                    "type": "string",
                    "maxLength": 5000
                }
            },
            "required": [
                "status"
            ]
        },
        "handler.ReviewPaymentRequest": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "note": {
                    "type": "string",
                    "maxLength": 1000
                }
            },
            "required": [
                "status"
            ]
        },
        "handler.ReviseReadingsRequest": {
            "type": "object",
            "properties": {
                "previous_reading": {
                    "type": "string",
                    "example": "0.00"
                },
                "current_reading": {
                    "type": "string",
                    "example": "0.00"
                },
                "rate_per_unit": {
                    "type": "string",
                    "example": "0.00"
                }
            }
        },
        "handler.UpdateMyProfileRequest": {
            "type": "object",
            "properties": {
                "full_name": {
                    "type": "string",
                    "minLength": 1,
                    "maxLength": 200
                },
                "phone": {
                    "type": "string",
                    "maxLength": 50
                },
                "address": {
                    "type": "string",
                    "maxLength": 500
                }
            }
        },
        "identity.ProfileResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "user_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "email": {
                    "type": "string"
                },
                "full_name": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "meter_number": {
                    "type": "string"
                },
                "is_admin": {
                    "type": "boolean"
                },
                "role": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "identity.RegisterResult": {
            "type": "object",
            "properties": {
                "account_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "email": {
                    "type": "string"
                },
                "profile": {
                    "$ref": "#/definitions/identity.ProfileResponse"
                }
            }
        },
        "identity.TokenResult": {
            "type": "object",
            "properties": {
                "access_token": {
                    "type": "string"
                },
                "refresh_token": {
                    "type": "string"
                },
                "access_token_expires_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "refresh_token_expires_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "token_type": {
                    "type": "string"
                },
                "profile": {
                    "$ref": "#/definitions/identity.ProfileResponse"
                }
            }
        },
        "payment.PaymentResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "bill_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "amount": {
                    "type": "string",
                    "example": "0.00"
                },
                "amount_display": {
                    "type": "string"
                },
                "method": {
                    "type": "string"
                },
                "transaction_id": {
                    "type": "string"
                },
                "payment_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "status": {
                    "type": "string"
                },
                "review_note": {
                    "type": "string"
                },
                "reviewed_by": {
                    "type": "string",
                    "format": "uuid"
                },
                "reviewed_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "payment.RecordPaymentResult": {
            "type": "object",
            "properties": {
                "payment": {
                    "$ref": "#/definitions/payment.PaymentResponse"
                },
                "bill_status": {
                    "type": "string"
                }
            }
        },
        "payment.ReviewPaymentResult": {
            "type": "object",
            "properties": {
                "payment": {
                    "$ref": "#/definitions/payment.PaymentResponse"
                },
                "bill_status": {
                    "type": "string"
                }
            }
        },
        "support.AttachmentURLResult": {
            "type": "object",
            "properties": {
                "url": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "support.ComplaintResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "customer_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "subject": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "priority": {
                    "type": "string"
                },
                "admin_response": {
                    "type": "string"
                },
                "has_attachment": {
                    "type": "boolean"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "support.PendingCountResult": {
            "type": "object",
            "properties": {
                "count": {
                    "type": "integer"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Water Billing Portal API",
	Description:      "Customer and staff API for meter readings, water bills, payments and complaints.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
