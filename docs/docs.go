// Package docs registers the OpenAPI document served at /swagger/doc.json.
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
        "/": {"get": {"tags": ["meta"], "summary": "Service info", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/health": {"get": {"tags": ["meta"], "summary": "Health check", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/sensors": {
            "get": {
                "tags": ["sensors"], "summary": "List sensors", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.SensorRecord"}}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}}}
            },
            "post": {
                "tags": ["sensors"], "summary": "Create a new sensor", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "sensor", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SensorCreate"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Sensor"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errors.APIError"}}, "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errors.APIError"}}}
            }
        },
        "/sensors/{id}": {
            "get": {
                "tags": ["sensors"], "summary": "Get a sensor by ID", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Sensor"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}}}
            },
            "delete": {
                "tags": ["sensors"], "summary": "Delete a sensor", "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Sensor"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}}}
            }
        },
        "/sensors/{id}/data": {
            "get": {
                "tags": ["readings"], "summary": "Get sensor readings", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "bucket", "in": "query", "enum": ["hour", "day", "week", "month", "year"]}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.APIError"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}}}
            },
            "post": {
                "tags": ["readings"], "summary": "Record a reading", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "reading", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.Reading"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Reading"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errors.APIError"}}}
            }
        },
        "/sensors/search": {
            "get": {
                "tags": ["sensors"], "summary": "Search sensors", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "query", "in": "query", "required": true},
                    {"type": "integer", "name": "size", "in": "query"},
                    {"type": "string", "name": "search_type", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Sensor"}}}}
            }
        },
        "/sensors/near": {
            "get": {
                "tags": ["sensors"], "summary": "Sensors near a point", "produces": ["application/json"],
                "parameters": [
                    {"type": "number", "name": "latitude", "in": "query", "required": true},
                    {"type": "number", "name": "longitude", "in": "query", "required": true},
                    {"type": "number", "name": "radius", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sensors/temperature/values": {"get": {"tags": ["views"], "summary": "Temperature extremes and mean per sensor", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/sensors/low_battery": {"get": {"tags": ["views"], "summary": "Sensors whose latest battery level is at most 0.2", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/sensors/quantity_by_type": {"get": {"tags": ["views"], "summary": "Number of sensors per type", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}}
    },
    "definitions": {
        "errors.APIError": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "message": {"type": "string"},
                "code": {"type": "integer"},
                "request_id": {"type": "string"},
                "step": {"type": "string"}
            }
        },
        "models.SensorCreate": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "type": {"type": "string"},
                "mac_address": {"type": "string"},
                "manufacturer": {"type": "string"},
                "serie_number": {"type": "string"},
                "model": {"type": "string"},
                "firmware_version": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "models.Sensor": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "type": {"type": "string"},
                "mac_address": {"type": "string"},
                "manufacturer": {"type": "string"},
                "serie_number": {"type": "string"},
                "model": {"type": "string"},
                "firmware_version": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "models.SensorRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "joined_at": {"type": "string"}
            }
        },
        "models.Reading": {
            "type": "object",
            "properties": {
                "temperature": {"type": "number"},
                "humidity": {"type": "number"},
                "velocity": {"type": "number"},
                "battery_level": {"type": "number"},
                "last_seen": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Senser API",
	Description:      "Sensor telemetry fanned out over relational, document, wide-column, time-series, cache and search stores.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
