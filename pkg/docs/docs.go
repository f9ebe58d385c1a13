// Package docs holds the OpenAPI description served under /swagger.
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
        "/checkout": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["checkout"],
                "summary": "Validate the cart against the catalog and create an order",
                "parameters": [
                    {"description": "Cart and customer data", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/checkout.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/checkout.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}}
                }
            }
        },
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List active products",
                "parameters": [
                    {"type": "string", "description": "Category filter", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Product"}}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Get one product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}}
                }
            }
        },
        "/shipping/zones": {
            "get": {
                "produces": ["application/json"],
                "tags": ["shipping"],
                "summary": "List delivery zones and fees",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/config.ShippingZone"}}}
                }
            }
        },
        "/shipping/quote": {
            "get": {
                "produces": ["application/json"],
                "tags": ["shipping"],
                "summary": "Quote the delivery fee for a city",
                "parameters": [
                    {"type": "string", "description": "City", "name": "city", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/config.ShippingZone"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}}
                }
            }
        },
        "/payments/webhook": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Payment provider notification",
                "responses": {
                    "200": {"description": "OK"},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}}
                }
            }
        },
        "/admin/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List orders",
                "parameters": [
                    {"type": "string", "description": "Status filter", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/orders.Page"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}}
                }
            }
        },
        "/admin/orders/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Get an order with its items",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}}
                }
            }
        },
        "/admin/orders/{id}/status": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Move an order to its next status",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/gateway.StatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}}
                }
            }
        },
        "/admin/orders/{id}/activity": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "List the activity log of an order, newest first",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Maximum entries (1-200, default 50)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/gateway.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "checkout.LineRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "quantity": {"type": "integer"},
                "size": {"type": "string"},
                "title": {"type": "string"},
                "unit_price": {"type": "number"}
            }
        },
        "checkout.Metadata": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "neighborhood": {"type": "string"},
                "notes": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "checkout.Request": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/checkout.LineRequest"}},
                "metadata": {"$ref": "#/definitions/checkout.Metadata"},
                "total": {"type": "number"},
                "shippingCost": {"type": "number"},
                "paymentMethod": {"type": "string", "enum": ["mercadopago", "whatsapp"]}
            }
        },
        "checkout.Result": {
            "type": "object",
            "properties": {
                "orderId": {"type": "string"},
                "whatsapp": {"type": "boolean"},
                "whatsappUrl": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "config.ShippingZone": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "fee": {"type": "number"}
            }
        },
        "gateway.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"},
                "params": {"type": "object"},
                "debug_info": {"type": "object"}
            }
        },
        "gateway.StatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["pending", "paid", "shipped", "delivered", "cancelled"]},
                "carrier": {"type": "string"},
                "tracking_number": {"type": "string"}
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "image_url": {"type": "string"},
                "price": {"type": "number"},
                "sale_price": {"type": "number"},
                "stock": {"type": "integer"},
                "stock_by_size": {"type": "object"},
                "active": {"type": "boolean"}
            }
        },
        "models.OrderItem": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string"},
                "product_name": {"type": "string"},
                "quantity": {"type": "integer"},
                "price_at_time": {"type": "number"},
                "size": {"type": "string"}
            }
        },
        "models.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string"},
                "total": {"type": "number"},
                "shipping_cost": {"type": "number"},
                "payment_method": {"type": "string"},
                "customer_name": {"type": "string"},
                "customer_email": {"type": "string"},
                "carrier": {"type": "string"},
                "tracking_number": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.OrderItem"}}
            }
        },
        "orders.Page": {
            "type": "object",
            "properties": {
                "orders": {"type": "array", "items": {"$ref": "#/definitions/models.Order"}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Foodshop API",
	Description:      "Storefront checkout, catalog and order administration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
