package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopapi/internal/store"
)

const totalCountHeader = "X-Total-Count"

var errInvalidPagination = errors.New("invalid pagination params")

func parsePaginationParams(pageStr, limitStr string) (int, int, error) {
	page := 1
	limit := 20

	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return 0, 0, errInvalidPagination
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			return 0, 0, errInvalidPagination
		}
		limit = l
	}

	return page, limit, nil
}

// pageFromQuery applies pagination only when both page and limit are given;
// otherwise the zero Page selects every row.
func pageFromQuery(c *gin.Context) (store.Page, error) {
	pageStr := c.Query("page")
	limitStr := c.Query("limit")
	if pageStr == "" || limitStr == "" {
		return store.Page{}, nil
	}

	page, limit, err := parsePaginationParams(pageStr, limitStr)
	if err != nil {
		return store.Page{}, err
	}
	return store.Page{Offset: (page - 1) * limit, Limit: limit}, nil
}

func setTotalCount(c *gin.Context, total int64) {
	c.Header(totalCountHeader, strconv.FormatInt(total, 10))
}
