package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(query string) PaginationParams {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/products?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	p := paramsFor("")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())
}

func TestGetPaginationParamsCapsPageSize(t *testing.T) {
	p := paramsFor("page=3&pageSize=500")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset())
}

func TestGetPaginationParamsRejectsGarbage(t *testing.T) {
	p := paramsFor("page=-2&pageSize=abc")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
}

func TestCreatePaginationResult(t *testing.T) {
	r := CreatePaginationResult([]int{1, 2}, 45, PaginationParams{Page: 1, PageSize: 20})
	assert.Equal(t, 3, r.TotalPages)
	assert.Equal(t, int64(45), r.Total)
}
