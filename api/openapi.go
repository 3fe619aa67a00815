// Package api embeds the OpenAPI description of the JSON API.
package api

import _ "embed"

// Swagger is the Swagger 2.0 document for /v1.
//
//go:embed user.swagger.json
var Swagger []byte
