package utils

import (
	"github.com/labstack/echo/v4"
)

// Response is the JSON envelope every endpoint answers with.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a success envelope with the given status code.
func Success(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, Response{Status: "success", Message: message, Data: data})
}

// Fail writes an error envelope, deriving the status code from err.
func Fail(c echo.Context, err error) error {
	return c.JSON(StatusCode(err), Response{Status: "error", Message: err.Error()})
}
