// Package docs содержит swagger-описание API, которое отдаётся по /docs/*.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
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
        "/cards/{cardID}/slots": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Booking"],
                "summary": "Свободные слоты карточки",
                "parameters": [
                    {"type": "string", "name": "cardID", "in": "path", "required": true},
                    {"type": "string", "description": "YYYY-MM-DD", "name": "date", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректная дата", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Карточка заблокирована тарифом", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Карточка не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/cards/{cardID}/bookings": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Booking"],
                "summary": "Забронировать слот",
                "parameters": [
                    {"type": "string", "name": "cardID", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.DummyBooking"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный JSON", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Карточка заблокирована тарифом", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Карточка не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Время не входит в рабочую сетку", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Не удалось сохранить бронь", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/me/cards": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Cards"],
                "summary": "Карточки пользователя с признаком блокировки",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Пользователь не авторизован", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/me/cards/{cardID}/leads": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Cards"],
                "summary": "Лиды карточки",
                "parameters": [
                    {"type": "string", "name": "cardID", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Карточка заблокирована тарифом", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/me/cards/{cardID}/working-hours": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Cards"],
                "summary": "Изменить рабочие часы карточки",
                "parameters": [
                    {"type": "string", "name": "cardID", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/workinghours.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный JSON", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Пользователь не авторизован", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "403": {"description": "Карточка заблокирована тарифом", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Не удалось сохранить рабочие часы", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/payments/webhook": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Payments"],
                "summary": "Вебхук оплаты",
                "parameters": [
                    {"type": "string", "name": "X-Api-Signature", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.PaymentEvent"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Неверная подпись", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.ClientInfo": {
            "type": "object",
            "required": ["name", "phone"],
            "properties": {
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "interest": {"type": "string"}
            }
        },
        "models.DummyBooking": {
            "type": "object",
            "required": ["date", "time"],
            "properties": {
                "date": {"type": "string", "example": "2025-03-10"},
                "time": {"type": "string", "example": "10:30"},
                "client": {"$ref": "#/definitions/models.ClientInfo"}
            }
        },
        "models.PaymentEvent": {
            "type": "object",
            "properties": {
                "event": {"type": "string", "example": "payment.succeeded"},
                "object": {"type": "object"}
            }
        },
        "workinghours.Request": {
            "type": "object",
            "required": ["start", "end", "slot_duration_minutes"],
            "properties": {
                "days": {"type": "array", "items": {"type": "integer"}, "example": [1, 2, 3, 4, 5]},
                "start": {"type": "string", "example": "09:00"},
                "end": {"type": "string", "example": "18:00"},
                "slot_duration_minutes": {"type": "integer", "example": 30}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "error": {"type": "string"},
                "data": {}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "Error"},
                "error": {"type": "string", "example": "invalid request body"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo метаданные документа.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Cardlink API",
	Description:      "API цифровых визиток: запись на встречи, лиды и тарифы владельцев карточек",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
