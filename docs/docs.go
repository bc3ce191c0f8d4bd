// Package docs registers the Swagger documents served under /swagger/.
package docs

import "github.com/swaggo/swag"

const (
	MapInstance    = "map"
	IngestInstance = "ingest"
	APIInstance    = "api"
)

const healthPath = `
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        }`

const mapTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/markers": {
            "get": {
                "tags": ["Map"],
                "summary": "Current markers",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ws/map": {
            "get": {
                "tags": ["Map"],
                "summary": "Map updates",
                "description": "markers.snapshot first, then marker.created, marker.updated and marker.removed events",
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        },` + healthPath + `
    }
}`

const ingestTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/ingest/messages": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Ingest"],
                "summary": "Upload position messages",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{
                    "in": "body",
                    "name": "messages",
                    "required": true,
                    "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PositionMessage"}}
                }],
                "responses": {
                    "202": {"description": "Accepted"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "422": {"description": "Unprocessable Entity"},
                    "429": {"description": "Too Many Requests"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },` + healthPath + `
    },
    "definitions": {
        "models.PositionMessage": {
            "type": "object",
            "required": ["IcaoAddress"],
            "properties": {
                "IcaoAddress": {"type": "string", "example": "3C6444"},
                "Date": {"type": "string", "example": "2024/05/01"},
                "Time": {"type": "string", "example": "12:00:00.000"},
                "FlightCode": {"type": "string"},
                "FlightLevel": {"type": "integer"},
                "AirSpeed": {"type": "number"},
                "Heading": {"type": "number"},
                "Latitude": {"type": "number"},
                "Longitude": {"type": "number"},
                "Squawk": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

const apiTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/aircraft": {
            "get": {
                "tags": ["Aircraft"],
                "summary": "Aircraft snapshot",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "number", "name": "lat", "in": "query"},
                    {"type": "number", "name": "lon", "in": "query"},
                    {"type": "number", "name": "radius_km", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.AircraftPosition"}}}
                }
            }
        },
        "/aircraft/{icao}": {
            "get": {
                "tags": ["Aircraft"],
                "summary": "Aircraft state",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "icao", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },` + healthPath + `
    },
    "definitions": {
        "models.AircraftPosition": {
            "type": "object",
            "properties": {
                "IcaoAddress": {"type": "string"},
                "Latitude": {"type": "number"},
                "Longitude": {"type": "number"},
                "Heading": {"type": "number"}
            }
        }
    }
}`

var (
	MapSwaggerInfo = &swag.Spec{
		Version:          "1.0",
		Host:             "localhost:3000",
		BasePath:         "/",
		Title:            "Map Service API",
		Description:      "Map service polls the aircraft snapshot and pushes marker changes to map clients.",
		InfoInstanceName: MapInstance,
		SwaggerTemplate:  mapTemplate,
		LeftDelim:        "{{",
		RightDelim:       "}}",
	}

	IngestSwaggerInfo = &swag.Spec{
		Version:          "1.0",
		Host:             "localhost:3001",
		BasePath:         "/",
		Title:            "Ingest Service API",
		Description:      "Ingest service accepts position messages from dump1090 and remote feeders.",
		InfoInstanceName: IngestInstance,
		SwaggerTemplate:  ingestTemplate,
		LeftDelim:        "{{",
		RightDelim:       "}}",
	}

	APISwaggerInfo = &swag.Spec{
		Version:          "1.0",
		Host:             "localhost:3003",
		BasePath:         "/",
		Title:            "Aircraft API",
		Description:      "API service serves the latest aircraft positions.",
		InfoInstanceName: APIInstance,
		SwaggerTemplate:  apiTemplate,
		LeftDelim:        "{{",
		RightDelim:       "}}",
	}
)

func init() {
	swag.Register(MapSwaggerInfo.InstanceName(), MapSwaggerInfo)
	swag.Register(IngestSwaggerInfo.InstanceName(), IngestSwaggerInfo)
	swag.Register(APISwaggerInfo.InstanceName(), APISwaggerInfo)
}
