package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// intParam parses a numeric path parameter; a malformed value behaves like a
// missing resource.
func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
