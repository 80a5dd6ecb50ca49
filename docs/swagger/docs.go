// Package swagger registers the OpenAPI description served at /swagger/*.
package swagger

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
    "securityDefinitions": {
        "ApiKey": {"type": "apiKey", "in": "header", "name": "X-API-Key"}
    },
    "security": [{"ApiKey": []}],
    "paths": {
        "/records/{id}": {
            "get": {
                "description": "Load a record, extract identifiers and covers, fetch the live cover set and persist drift.",
                "produces": ["application/json"],
                "tags": ["covers"],
                "summary": "Refresh Record",
                "parameters": [
                    {"type": "string", "description": "MMS ID", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "description": "Compute the decision without persisting", "name": "dry_run", "in": "query"},
                    {"type": "string", "description": "Session ID", "name": "X-Session-ID", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "Record Report", "schema": {"$ref": "#/definitions/covers.Report"}},
                    "409": {"description": "Superseded", "schema": {"$ref": "#/definitions/error"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/records/{id}/apply": {
            "post": {
                "description": "Persist the pending active-cover annotation of the loaded record.",
                "produces": ["application/json"],
                "tags": ["covers"],
                "summary": "Apply Decision",
                "parameters": [
                    {"type": "string", "description": "MMS ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Session ID", "name": "X-Session-ID", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "Record Report", "schema": {"$ref": "#/definitions/covers.Report"}},
                    "404": {"description": "No record loaded", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/records/session": {
            "delete": {
                "tags": ["covers"],
                "summary": "Reset Session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "X-Session-ID", "in": "header", "required": true}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/records/{id}/covers": {
            "post": {
                "description": "Upload an image (< 1 MiB) as cover of the loaded record.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["covers"],
                "summary": "Upload Cover",
                "parameters": [
                    {"type": "string", "description": "MMS ID", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "Cover image", "name": "cover", "in": "formData", "required": true},
                    {"type": "boolean", "description": "Replace an existing primary cover", "name": "confirm", "in": "query"},
                    {"type": "string", "description": "Session ID", "name": "X-Session-ID", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "Record Report", "schema": {"$ref": "#/definitions/covers.Report"}},
                    "409": {"description": "Overwrite not confirmed", "schema": {"$ref": "#/definitions/error"}},
                    "413": {"description": "Cover too large", "schema": {"$ref": "#/definitions/error"}},
                    "415": {"description": "Not an image", "schema": {"$ref": "#/definitions/error"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["covers"],
                "summary": "Delete Cover",
                "parameters": [
                    {"type": "string", "description": "MMS ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Identifier type", "name": "type", "in": "query", "required": true},
                    {"type": "string", "description": "Identifier code", "name": "code", "in": "query", "required": true},
                    {"type": "string", "description": "Session ID", "name": "X-Session-ID", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "Record Report", "schema": {"$ref": "#/definitions/covers.Report"}}}
            }
        },
        "/records/{id}/covers/staged": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["covers"],
                "summary": "Upload Staged Cover",
                "parameters": [
                    {"type": "string", "description": "MMS ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Staging object key", "name": "object", "in": "formData", "required": true},
                    {"type": "boolean", "description": "Replace an existing primary cover", "name": "confirm", "in": "query"},
                    {"type": "string", "description": "Session ID", "name": "X-Session-ID", "in": "header", "required": true}
                ],
                "responses": {"200": {"description": "Record Report", "schema": {"$ref": "#/definitions/covers.Report"}}}
            }
        },
        "/records/{id}/history": {
            "get": {
                "description": "List stored reconciliation decisions of a record, newest first.",
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Reconciliation History",
                "parameters": [
                    {"type": "string", "description": "Record ID (NZ id when linked)", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Maximum number of entries", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "History", "schema": {"type": "array", "items": {"$ref": "#/definitions/history.Entry"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/covers/{source}/{code}/thumbnail": {
            "get": {
                "produces": ["image/jpeg"],
                "tags": ["covers"],
                "summary": "Cover Thumbnail",
                "parameters": [
                    {"type": "string", "description": "Cover source", "name": "source", "in": "path", "required": true},
                    {"type": "string", "description": "Cover code", "name": "code", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "Image", "schema": {"type": "file"}}}
            }
        },
        "/integrity": {
            "get": {
                "description": "Checks the staging bucket, the history table and the catalog endpoint.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Run All Integrity Checks",
                "responses": {"200": {"description": "Combined Report", "schema": {"type": "object"}}}
            }
        },
        "/integrity/staging": {
            "get": {
                "description": "Reports staged objects that are empty or too large. Optionally removes them.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Staging Bucket",
                "parameters": [
                    {"type": "boolean", "description": "Remove invalid objects", "name": "fix", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Staging Report", "schema": {"$ref": "#/definitions/checks.StagingReport"}},
                    "501": {"description": "Staging disabled", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/integrity/history": {
            "get": {
                "description": "Checks that the reconciliation history table has every mapped column. Optionally migrates it.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check History Schema",
                "parameters": [
                    {"type": "boolean", "description": "Migrate the table", "name": "fix", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Schema Report", "schema": {"$ref": "#/definitions/checks.SchemaReport"}},
                    "501": {"description": "Database disabled", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/integrity/catalog": {
            "get": {
                "description": "Resolves the institution code through the catalog configuration endpoint.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Catalog",
                "responses": {
                    "200": {"description": "Catalog Report", "schema": {"$ref": "#/definitions/checks.CatalogReport"}},
                    "502": {"description": "Catalog unreachable", "schema": {"$ref": "#/definitions/checks.CatalogReport"}}
                }
            }
        },
        "/staging": {
            "get": {
                "produces": ["application/json"],
                "tags": ["staging"],
                "summary": "List Staged Covers",
                "parameters": [
                    {"type": "string", "description": "Key prefix", "name": "prefix", "in": "query"}
                ],
                "responses": {"200": {"description": "Staged objects", "schema": {"type": "array", "items": {"$ref": "#/definitions/storage.StagedObject"}}}}
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["staging"],
                "summary": "Stage Cover",
                "parameters": [
                    {"type": "file", "description": "Cover image", "name": "cover", "in": "formData", "required": true},
                    {"type": "string", "description": "Object key, defaults to the file name", "name": "key", "in": "formData"}
                ],
                "responses": {"201": {"description": "Staged object", "schema": {"$ref": "#/definitions/storage.StagedObject"}}}
            }
        }
    },
    "definitions": {
        "checks.InvalidObject": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "size": {"type": "integer"},
                "reason": {"type": "string"}
            }
        },
        "checks.StagingReport": {
            "type": "object",
            "properties": {
                "bucket": {"type": "string"},
                "objects": {"type": "integer"},
                "invalid": {"type": "array", "items": {"$ref": "#/definitions/checks.InvalidObject"}}
            }
        },
        "checks.SchemaReport": {
            "type": "object",
            "properties": {
                "table": {"type": "string"},
                "matched": {"type": "boolean"},
                "missing_table": {"type": "boolean"},
                "missing_columns": {"type": "array", "items": {"type": "string"}}
            }
        },
        "checks.CatalogReport": {
            "type": "object",
            "properties": {
                "reachable": {"type": "boolean"},
                "institution": {"type": "string"},
                "tenant": {"type": "string"},
                "latency_ms": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "coverIDs": {
            "type": "object",
            "additionalProperties": {"type": "array", "items": {"type": "string"}}
        },
        "reconcile.CoverRecord": {
            "type": "object",
            "properties": {
                "source": {"type": "string"},
                "id_type": {"type": "string"},
                "id_code": {"type": "string"},
                "cover_code": {"type": "string"},
                "is_active": {"type": "boolean"},
                "cover_url": {"type": "string"}
            }
        },
        "reconcile.Reason": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["primary_removed", "source_missing", "not_recorded", "stale"]},
                "source": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "reconcile.Decision": {
            "type": "object",
            "properties": {
                "needs_update": {"type": "boolean"},
                "payload": {"$ref": "#/definitions/coverIDs"},
                "reasons": {"type": "array", "items": {"$ref": "#/definitions/reconcile.Reason"}}
            }
        },
        "bib.IdentifierSet": {
            "type": "object",
            "properties": {
                "mmsid": {"type": "string"},
                "isbn": {"type": "array", "items": {"type": "string"}},
                "issn": {"type": "array", "items": {"type": "string"}},
                "ean": {"type": "array", "items": {"type": "string"}}
            }
        },
        "covers.Summary": {
            "type": "object",
            "properties": {
                "mms_id": {"type": "string"},
                "mms_id_NZ": {"type": "string"},
                "mms_id_CZ": {"type": "string"},
                "is_consortium_linked": {"type": "boolean"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "place_of_publication": {"type": "string"},
                "publisher_const": {"type": "string"},
                "date_of_publication": {"type": "string"}
            }
        },
        "covers.Report": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "requested_id": {"type": "string"},
                "record": {"$ref": "#/definitions/covers.Summary"},
                "identifiers": {"$ref": "#/definitions/bib.IdentifierSet"},
                "available": {"$ref": "#/definitions/coverIDs"},
                "active": {"$ref": "#/definitions/coverIDs"},
                "live": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/reconcile.CoverRecord"}}
                },
                "decision": {"$ref": "#/definitions/reconcile.Decision"},
                "updated": {"type": "boolean"},
                "view_url": {"type": "string"}
            }
        },
        "history.Entry": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "record_id": {"type": "string"},
                "needs_update": {"type": "boolean"},
                "applied": {"type": "boolean"},
                "payload": {"$ref": "#/definitions/coverIDs"},
                "reasons": {"type": "array", "items": {"$ref": "#/definitions/reconcile.Reason"}},
                "created_at": {"type": "string"}
            }
        },
        "storage.StagedObject": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "size": {"type": "integer"},
                "content_type": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cover Manager API",
	Description:      "API for reconciling catalog cover annotations with the cover resolver.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
