// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Upstream and cache health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/api/fees/evaluate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["fees"],
                "summary": "Evaluate a fee string",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/fees.EvaluateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/api/fees/estimate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["fees"],
                "summary": "Estimate a scheduled fee",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/fees.EstimateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/api/fees/schedule": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fees"],
                "summary": "Fee schedule",
                "parameters": [
                    {"type": "string", "default": "individual", "name": "user_type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/api/fees/parse": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fees"],
                "summary": "Parse a fee string",
                "parameters": [
                    {"type": "string", "name": "fee", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/api/exchange/convert": {
            "get": {
                "produces": ["application/json"],
                "tags": ["exchange"],
                "summary": "Convert an amount",
                "parameters": [
                    {"type": "string", "name": "from", "in": "query", "required": true},
                    {"type": "string", "name": "to", "in": "query", "required": true},
                    {"type": "number", "name": "amount", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/api/rates": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "Rate table",
                "parameters": [
                    {"type": "string", "default": "USD", "name": "base", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/api/rates/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "Live USD/NGN rate",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/api/rates/live/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["rates"],
                "summary": "Refresh the live rate",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/api/currencies": {
            "get": {
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "List all currencies",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}}
                }
            }
        },
        "/api/currencies/{code}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["currencies"],
                "summary": "Get currency by code",
                "parameters": [
                    {"type": "string", "name": "code", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        }
    },
    "definitions": {
        "common.ProblemDetails": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "errors": {},
                "instance": {"type": "string"},
                "status": {"type": "integer"},
                "title": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "common.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "fees.EstimateRequest": {
            "type": "object",
            "required": ["currency", "section", "service"],
            "properties": {
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "section": {"type": "string"},
                "service": {"type": "string"},
                "user_type": {"type": "string", "enum": ["individual", "business"]}
            }
        },
        "fees.EvaluateRequest": {
            "type": "object",
            "required": ["currency"],
            "properties": {
                "amount": {"type": "number"},
                "currency": {"type": "string"},
                "fee": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Fee Estimator API",
	Description:      "Fee schedule evaluation, FX conversion and live USD/NGN rates",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
