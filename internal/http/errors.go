package http

import "github.com/gin-gonic/gin"

// APIError es el sobre de error uniforme para toda respuesta fallida.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, APIError{StatusCode: status, Message: message})
}
