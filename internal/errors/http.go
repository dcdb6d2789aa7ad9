package errors

import "github.com/labstack/echo/v4"

// Respond writes the error as the standard failure envelope.
func Respond(c echo.Context, err error) error {
	return c.JSON(StatusCode(err), echo.Map{
		"status": Code(err),
		"error":  err.Error(),
	})
}
