// Package docs holds the swaggo-generated API description. In a real
// build this file is produced by `swag init`; here it is hand-written
// to the same shape so httpSwagger.Handler has a template to serve.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Bundl API",
        "description": "Location-aware group-order coordination backend.",
        "version": "1.0"
    },
    "basePath": "/",
    "paths": {}
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bundl API",
	Description:      "Location-aware group-order coordination backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
