// Package docs registra la especificación OpenAPI que se sirve en /swagger.
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
        "/animals": {
            "get": {
                "summary": "Search animals",
                "parameters": [
                    {"type": "string", "name": "species", "in": "query"},
                    {"type": "string", "name": "health_status", "in": "query"},
                    {"type": "string", "name": "pen_id", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Register an animal (atomic pen admission)",
                "responses": {
                    "201": {"description": "Created"},
                    "404": {"description": "pen not found"},
                    "409": {"description": "species mismatch / capacity exceeded"}
                }
            }
        },
        "/animals/{animalID}": {
            "get": {"summary": "Get animal", "responses": {"200": {"description": "OK"}}},
            "delete": {"summary": "Soft-delete animal", "responses": {"204": {"description": "No Content"}}}
        },
        "/animals/{animalID}/health": {
            "patch": {"summary": "Update health status", "responses": {"200": {"description": "OK"}}}
        },
        "/animals/{animalID}/transfer": {
            "post": {
                "summary": "Transfer animal to another pen",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "species mismatch / capacity exceeded"}
                }
            }
        },
        "/animals/{animalID}/death": {
            "post": {
                "summary": "Mark animal deceased (writes mortality record)",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "already deceased"}
                }
            }
        },
        "/animals/{animalID}/offspring": {
            "get": {"summary": "List offspring by dam/sire role", "responses": {"200": {"description": "OK"}}}
        },
        "/animals/{animalID}/parents": {
            "get": {"summary": "Resolve dam/sire references", "responses": {"200": {"description": "OK"}}}
        },
        "/animals/{animalID}/mortality": {
            "get": {"summary": "Get mortality record", "responses": {"200": {"description": "OK"}}}
        },
        "/pens": {
            "get": {"summary": "List pens", "responses": {"200": {"description": "OK"}}},
            "post": {"summary": "Create pen", "responses": {"201": {"description": "Created"}}}
        },
        "/pens/{penID}": {
            "get": {"summary": "Get pen", "responses": {"200": {"description": "OK"}}},
            "patch": {"summary": "Update pen (species is immutable)", "responses": {"200": {"description": "OK"}}}
        },
        "/pens/{penID}/occupancy": {
            "get": {"summary": "Active-animal count vs capacity", "responses": {"200": {"description": "OK"}}}
        },
        "/pen-assignments": {
            "get": {"summary": "List assignments by pen", "responses": {"200": {"description": "OK"}}},
            "post": {"summary": "Create assignment", "responses": {"201": {"description": "Created"}}}
        },
        "/pen-assignments/{assignmentID}/deactivate": {
            "post": {"summary": "Deactivate assignment (kept for audit)", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Farm Livestock Registry API",
	Description:      "Livestock registry: pen admission control, genealogy, lifecycle and access scoping.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
