package handler

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

const (
	apiTitle    = "Wallet Ledger API"
	specRoute   = "/swagger/spec"
	swaggerDist = "https://cdn.jsdelivr.net/npm/swagger-ui-dist@5"
)

// openAPISpec holds the OpenAPI YAML; nil until SetSwaggerSpec is called.
var openAPISpec atomic.Pointer[[]byte]

// SetSwaggerSpec installs the OpenAPI document served at /swagger/spec.
func SetSwaggerSpec(spec []byte) {
	if spec == nil {
		openAPISpec.Store(nil)
		return
	}
	openAPISpec.Store(&spec)
}

// SwaggerSpec serves the raw OpenAPI YAML.
func SwaggerSpec(c *gin.Context) {
	spec := openAPISpec.Load()
	if spec == nil {
		c.String(http.StatusNotFound, "OpenAPI spec not loaded")
		return
	}
	c.Data(http.StatusOK, "application/x-yaml", *spec)
}

var swaggerPage = fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>%[1]s</title>
  <link rel="stylesheet" href="%[2]s/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="%[2]s/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({url: '%[3]s', dom_id: '#swagger-ui', persistAuthorization: true});
  </script>
</body>
</html>`, apiTitle, swaggerDist, specRoute)

// SwaggerUI serves a Swagger UI page that loads /swagger/spec.
func SwaggerUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(swaggerPage))
}
