// Package docs holds the OpenAPI description served at /swagger and /openapi.json.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/auth/callback": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Auth0 login callback", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthCallbackResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}},
        "/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AuthCallbackResponse"}}}}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Logout", "responses": {"200": {"description": "OK"}}}},
        "/clinic": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["clinic"], "summary": "Get clinic settings", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ClinicResponse"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["clinic"], "summary": "Update clinic settings", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/service.UpdateClinicInput"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ClinicResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        },
        "/patients": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["patients"], "summary": "List patients", "parameters": [{"type": "string", "name": "search", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.PatientResponse"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["patients"], "summary": "Create a patient", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.PatientRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.PatientResponse"}}}}
        },
        "/patients/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["patients"], "summary": "Get a patient", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PatientResponse"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["patients"], "summary": "Update a patient", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.PatientRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PatientResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["patients"], "summary": "Delete a patient", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/appointments": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["appointments"], "summary": "List a day's appointments", "parameters": [{"type": "string", "name": "date", "in": "query", "required": true}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.AppointmentResponse"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["appointments"], "summary": "Create an appointment", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.CreateAppointmentRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.AppointmentResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}}}
        },
        "/appointments/limit-usage": {"get": {"security": [{"BearerAuth": []}], "tags": ["appointments"], "summary": "Monthly appointment quota usage", "parameters": [{"type": "integer", "name": "year", "in": "query"}, {"type": "integer", "name": "month", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/appointments/month/{year}/{month}": {"get": {"security": [{"BearerAuth": []}], "tags": ["appointments"], "summary": "List a month's appointments", "parameters": [{"type": "integer", "name": "year", "in": "path", "required": true}, {"type": "integer", "name": "month", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.AppointmentResponse"}}}}}},
        "/appointments/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["appointments"], "summary": "Get an appointment", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AppointmentResponse"}}}}},
        "/appointments/{id}/status": {"patch": {"security": [{"BearerAuth": []}], "tags": ["appointments"], "summary": "Change an appointment's status", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateStatusRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AppointmentResponse"}}}}},
        "/appointments/{id}/reschedule": {"patch": {"security": [{"BearerAuth": []}], "tags": ["appointments"], "summary": "Move an appointment", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.RescheduleRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AppointmentResponse"}}}}},
        "/appointments/{id}/cancel": {"post": {"security": [{"BearerAuth": []}], "tags": ["appointments"], "summary": "Cancel an appointment", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AppointmentResponse"}}}}},
        "/appointments/{id}/payments": {"get": {"security": [{"BearerAuth": []}], "tags": ["payments"], "summary": "Payments of an appointment", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/expenses": {"post": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Create an expense", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.ExpenseRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.ExpenseResponse"}}}}},
        "/expenses/{year}/{month}": {"get": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "List a month's expenses", "parameters": [{"type": "integer", "name": "year", "in": "path", "required": true}, {"type": "integer", "name": "month", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.ExpenseResponse"}}}}}},
        "/expenses/{year}/{month}/materialize": {"post": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Copy recurring expenses into a month", "parameters": [{"type": "integer", "name": "year", "in": "path", "required": true}, {"type": "integer", "name": "month", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/expenses/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Update an expense", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.ExpenseRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ExpenseResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Delete an expense", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/expenses/{id}/toggle-paid": {"patch": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Toggle an expense's paid flag", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/expenses/{id}/receipt": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Presigned URLs for an expense receipt", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "tags": ["expenses"], "summary": "Attach a receipt image to an expense", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "file", "name": "file", "in": "formData", "required": true}], "responses": {"201": {"description": "Created"}, "503": {"description": "Service Unavailable"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Remove an expense receipt", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/dashboard/summary": {"get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Monthly dashboard", "parameters": [{"type": "integer", "name": "year", "in": "query"}, {"type": "integer", "name": "month", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/public/{slug}": {"get": {"tags": ["public"], "summary": "Public clinic profile", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "429": {"description": "Too Many Requests"}}}},
        "/public/{slug}/slots": {"get": {"tags": ["public"], "summary": "Free slots for a day", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"type": "string", "name": "date", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}, "429": {"description": "Too Many Requests"}}}},
        "/public/{slug}/book": {"post": {"tags": ["public"], "summary": "Book an appointment", "parameters": [{"type": "string", "name": "slug", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handler.BookingRequest"}}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}, "429": {"description": "Too Many Requests"}}}},
        "/webhooks/payments": {"post": {"tags": ["payments"], "summary": "Payment provider webhook", "parameters": [{"type": "string", "name": "X-Signature", "in": "header", "required": true}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}}
    },
    "definitions": {
        "handler.ProblemDetails": {"type": "object", "properties": {"type": {"type": "string"}, "title": {"type": "string"}, "status": {"type": "integer"}, "detail": {"type": "string"}, "instance": {"type": "string"}, "errors": {"type": "array", "items": {"$ref": "#/definitions/handler.ValidationError"}}}},
        "handler.ValidationError": {"type": "object", "properties": {"field": {"type": "string"}, "message": {"type": "string"}}},
        "handler.UserResponse": {"type": "object", "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "name": {"type": "string"}, "pictureUrl": {"type": "string"}}},
        "handler.ClinicResponse": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "publicSlug": {"type": "string"}, "slotMinutes": {"type": "integer"}, "opensAt": {"type": "string"}, "closesAt": {"type": "string"}, "timezone": {"type": "string"}, "monthlyAppointmentLimit": {"type": "integer"}}},
        "handler.AuthCallbackResponse": {"type": "object", "properties": {"user": {"$ref": "#/definitions/handler.UserResponse"}, "clinic": {"$ref": "#/definitions/handler.ClinicResponse"}, "isNewUser": {"type": "boolean"}}},
        "service.UpdateClinicInput": {"type": "object", "properties": {"name": {"type": "string"}, "publicSlug": {"type": "string"}, "slotMinutes": {"type": "integer"}, "opensAt": {"type": "string"}, "closesAt": {"type": "string"}, "timezone": {"type": "string"}, "monthlyAppointmentLimit": {"type": "integer"}}},
        "handler.PatientRequest": {"type": "object", "properties": {"name": {"type": "string"}, "phone": {"type": "string"}, "email": {"type": "string"}, "birthDate": {"type": "string"}, "notes": {"type": "string"}}},
        "handler.PatientResponse": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "phone": {"type": "string"}, "email": {"type": "string"}, "birthDate": {"type": "string"}, "notes": {"type": "string"}, "createdAt": {"type": "string"}}},
        "handler.CreateAppointmentRequest": {"type": "object", "properties": {"patientId": {"type": "integer"}, "startsAt": {"type": "string"}, "endsAt": {"type": "string"}, "price": {"type": "string"}, "notes": {"type": "string"}}},
        "handler.UpdateStatusRequest": {"type": "object", "properties": {"status": {"type": "string", "enum": ["scheduled", "confirmed", "completed", "cancelled", "no_show"]}}},
        "handler.RescheduleRequest": {"type": "object", "properties": {"startsAt": {"type": "string"}, "endsAt": {"type": "string"}}},
        "handler.AppointmentResponse": {"type": "object", "properties": {"id": {"type": "integer"}, "patientId": {"type": "integer"}, "startsAt": {"type": "string"}, "endsAt": {"type": "string"}, "status": {"type": "string"}, "source": {"type": "string"}, "price": {"type": "string"}, "isPaid": {"type": "boolean"}, "paymentReference": {"type": "string"}, "notes": {"type": "string"}}},
        "handler.ExpenseRequest": {"type": "object", "properties": {"description": {"type": "string"}, "amount": {"type": "string"}, "category": {"type": "string"}, "date": {"type": "string"}, "isPaid": {"type": "boolean"}, "recurringDay": {"type": "integer"}}},
        "handler.ExpenseResponse": {"type": "object", "properties": {"id": {"type": "integer"}, "description": {"type": "string"}, "amount": {"type": "string"}, "category": {"type": "string"}, "date": {"type": "string"}, "isPaid": {"type": "boolean"}, "recurringDay": {"type": "integer"}, "templateId": {"type": "integer"}, "hasReceipt": {"type": "boolean"}}},
        "handler.BookingRequest": {"type": "object", "properties": {"name": {"type": "string"}, "phone": {"type": "string"}, "email": {"type": "string"}, "startsAt": {"type": "string"}, "notes": {"type": "string"}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"description": "Auth0 access token, as: Bearer <token>", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Clinica API",
	Description:      "Agenda, patients, expenses and monthly dashboard for small clinics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
