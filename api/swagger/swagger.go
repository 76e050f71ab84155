package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Tutor Timetable API",
        "description": "Greedy weekly timetable generation for tutors and their students",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Schedules", "description": "Timetable generation and export"},
        {"name": "People", "description": "Stored person schedules"}
    ],
    "paths": {
        "/schedules/generate": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate a weekly timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Malformed time or invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedules/export": {
            "post": {
                "tags": ["Schedules"],
                "summary": "Generate a timetable and download it",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Timetable file", "schema": {"type": "file"}}
                }
            }
        },
        "/schedules/cache": {
            "delete": {
                "tags": ["Schedules"],
                "summary": "Drop cached timetables",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/people": {
            "get": {
                "tags": ["People"],
                "summary": "List stored person schedules",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/people/{name}": {
            "get": {
                "tags": ["People"],
                "summary": "Get a person schedule",
                "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["People"],
                "summary": "Create or replace a person schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleDocument"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["People"],
                "summary": "Delete a person schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/people/upload": {
            "post": {
                "tags": ["People"],
                "summary": "Parse an uploaded people file",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "save", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Payload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/people/changes": {
            "post": {
                "tags": ["People"],
                "summary": "Detect schedule changes since a client snapshot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"knownFiles": {"type": "object", "additionalProperties": {"type": "string", "format": "date-time"}}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/people/deletions": {
            "get": {
                "tags": ["People"],
                "summary": "List the deletion log",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/people/deletions/{name}/restore": {
            "post": {
                "tags": ["People"],
                "summary": "Restore a deleted schedule",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/people/deletions/{name}": {
            "delete": {
                "tags": ["People"],
                "summary": "Permanently remove a deletion record",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Purged"}}
            }
        }
    },
    "definitions": {
        "BlockedInterval": {
            "type": "object",
            "required": ["day", "start", "end"],
            "properties": {
                "day": {"type": "string", "example": "Monday"},
                "start": {"type": "string", "example": "09:00"},
                "end": {"type": "string", "example": "10:30"},
                "label": {"type": "string"}
            }
        },
        "ScheduleDocument": {
            "type": "object",
            "properties": {
                "blockedIntervals": {"type": "array", "items": {"$ref": "#/definitions/BlockedInterval"}},
                "compatibleWith": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SubjectRequirement": {
            "type": "object",
            "required": ["type", "name"],
            "properties": {
                "type": {"type": "string", "enum": ["daily", "weekly"]},
                "name": {"type": "string"},
                "dailyMinutes": {"type": "integer"},
                "sessionsPerWeek": {"type": "integer"},
                "minutesPerSession": {"type": "integer"}
            }
        },
        "PersonProfile": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectRequirement"}}
            }
        },
        "Calendar": {
            "type": "object",
            "required": ["days", "startTime", "endTime"],
            "properties": {
                "days": {"type": "array", "items": {"type": "string"}},
                "startTime": {"type": "string", "example": "09:00"},
                "endTime": {"type": "string", "example": "17:00"}
            }
        },
        "GenerateScheduleRequest": {
            "type": "object",
            "required": ["calendar", "lunchTime"],
            "properties": {
                "people": {"type": "object", "additionalProperties": {"$ref": "#/definitions/ScheduleDocument"}},
                "personProfiles": {"type": "array", "items": {"$ref": "#/definitions/PersonProfile"}},
                "calendar": {"$ref": "#/definitions/Calendar"},
                "lunchTime": {"type": "string", "example": "12:00"},
                "flexibleBlockRequired": {"type": "boolean"},
                "usePeopleStore": {"type": "boolean"}
            }
        },
        "TimeBlock": {
            "type": "object",
            "properties": {
                "day": {"type": "string"},
                "start": {"type": "string"},
                "end": {"type": "string"},
                "type": {"type": "string", "enum": ["session", "lunch", "flexible", "blocked"]},
                "subject": {"type": "string"},
                "person": {"type": "string"},
                "people": {"type": "array", "items": {"type": "string"}},
                "label": {"type": "string"}
            }
        },
        "GenerateScheduleResponse": {
            "type": "object",
            "properties": {
                "blocks": {"type": "array", "items": {"$ref": "#/definitions/TimeBlock"}},
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "conflicts": {"type": "array", "items": {"type": "string"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
