// Package docs holds the OpenAPI description served under /swagger.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

//go:embed swagger.json.tmpl
var docTemplate string

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Chattik Messenger",
	Description:      "Chattik messenger backend: users, chats, groups, messages, contacts, AI assistant and uploads.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
