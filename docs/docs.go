// Package docs is regenerated by `swag init`; the handler annotations in
// controller/ are the source of truth.
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
        "/categories": {
            "get": {"tags": ["categories"], "operationId": "GetCategories", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["categories"], "operationId": "CreateCategory", "responses": {"201": {"description": "Created"}}}
        },
        "/categories/{category_id}": {
            "get": {"tags": ["categories"], "operationId": "GetCategory", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["categories"], "operationId": "UpdateCategory", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/categories/{category_id}/judges": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["categories"], "operationId": "GetJudges", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["categories"], "operationId": "AssignJudges", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/contestants": {
            "get": {"tags": ["contestants"], "operationId": "GetContestants", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["contestants"], "operationId": "CreateContestant", "responses": {"201": {"description": "Created"}}}
        },
        "/categories/{category_id}/scores": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["scores"], "operationId": "SubmitScore", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/categories/{category_id}/contestants/{contestant_id}/scores": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["scores"], "operationId": "GetScores", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}, {"type": "integer", "name": "contestant_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/categories/{category_id}/deductions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["deductions"], "operationId": "GetDeductions", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}, {"type": "string", "name": "status", "in": "query"}, {"type": "integer", "name": "contestant_id", "in": "query"}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["deductions"], "operationId": "RequestDeduction", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/deductions/{deduction_id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["deductions"], "operationId": "GetDeduction", "parameters": [{"type": "integer", "name": "deduction_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/deductions/{deduction_id}/approve": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["deductions"], "operationId": "ApproveDeduction", "parameters": [{"type": "integer", "name": "deduction_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/deductions/{deduction_id}/reject": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["deductions"], "operationId": "RejectDeduction", "parameters": [{"type": "integer", "name": "deduction_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/categories/{category_id}/sign": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["certification"], "operationId": "SignCategory", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/categories/{category_id}/certification": {
            "get": {"tags": ["certification"], "operationId": "GetCertification", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/categories/{category_id}/results": {
            "get": {"tags": ["results"], "operationId": "GetCategoryResults", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/categories/{category_id}/results/ws": {
            "get": {"tags": ["results"], "operationId": "StandingsWebSocket", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/categories/{category_id}/contestants/{contestant_id}/result": {
            "get": {"tags": ["results"], "operationId": "GetResult", "parameters": [{"type": "integer", "name": "category_id", "in": "path", "required": true}, {"type": "integer", "name": "contestant_id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
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
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Tabulator API",
	Description:      "Scoring and certification engine for judged competitions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
