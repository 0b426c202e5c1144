package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Barbershop API",
        "description": "Slot availability and appointment booking for barbershops",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Availability", "description": "Free slots per barber"},
        {"name": "Appointments", "description": "Booking and appointment lifecycle"},
        {"name": "Schedules", "description": "Working hours and slot length"},
        {"name": "Agenda", "description": "Printable day agendas"},
        {"name": "Authentication", "description": "Token introspection"}
    ],
    "paths": {
        "/barbershops/{shopId}/barbers/{barberId}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "List free slots of a barber on one day",
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "barberId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/barbershops/{shopId}/barbers/{barberId}/availability/week": {
            "get": {
                "tags": ["Availability"],
                "summary": "List free slots over consecutive days",
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "barberId", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "days", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/barbershops/{shopId}/appointments": {
            "get": {
                "tags": ["Appointments"],
                "summary": "List appointments visible to the caller",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["SCHEDULED", "COMPLETED", "CANCELLED"]},
                    {"name": "from", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "to", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Appointments"],
                "summary": "Book a slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BookAppointmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "SLOT_TAKEN", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "SLOT_UNAVAILABLE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/barbershops/{shopId}/appointments/{id}": {
            "get": {
                "tags": ["Appointments"],
                "summary": "Get an appointment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/barbershops/{shopId}/appointments/{id}/complete": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Mark an appointment completed",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "INVALID_TRANSITION", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/barbershops/{shopId}/appointments/{id}/cancel": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Cancel an appointment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "INVALID_TRANSITION", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/barbershops/{shopId}/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List working hours",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "barberId", "in": "query", "type": "string"},
                    {"name": "defaults", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Schedules"],
                "summary": "Set the working hours of one weekday",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertDayScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/barbershops/{shopId}/schedules/{id}": {
            "delete": {
                "tags": ["Schedules"],
                "summary": "Delete a schedule row",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/barbershops/{shopId}/slot-duration": {
            "put": {
                "tags": ["Schedules"],
                "summary": "Change the slot length",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSlotDurationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/barbershops/{shopId}/barbers/{barberId}/agenda": {
            "get": {
                "tags": ["Agenda"],
                "summary": "Download a barber's agenda",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "shopId", "in": "path", "required": true, "type": "string"},
                    {"name": "barberId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string", "format": "date"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"]}
                ],
                "responses": {
                    "200": {"description": "Agenda file"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current principal",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "BookAppointmentRequest": {
            "type": "object",
            "required": ["barber_id", "service_id", "date"],
            "properties": {
                "barber_id": {"type": "string"},
                "service_id": {"type": "string"},
                "date": {"type": "string", "format": "date-time"}
            }
        },
        "UpsertDayScheduleRequest": {
            "type": "object",
            "required": ["day_of_week", "start_time", "end_time"],
            "properties": {
                "barber_id": {"type": "string"},
                "day_of_week": {"type": "integer", "minimum": 0, "maximum": 6},
                "active": {"type": "boolean"},
                "start_time": {"type": "string", "example": "09:00"},
                "end_time": {"type": "string", "example": "18:00"},
                "pause_start": {"type": "string", "example": "12:00"},
                "pause_end": {"type": "string", "example": "13:00"}
            }
        },
        "UpdateSlotDurationRequest": {
            "type": "object",
            "required": ["slot_duration_minutes"],
            "properties": {
                "slot_duration_minutes": {"type": "integer", "minimum": 5, "maximum": 480}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
