package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageParams reads limit/offset query parameters. Zero values are returned
// for missing or malformed input; services apply their own defaults and caps.
func PageParams(c *gin.Context) (limit, offset int) {
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}
