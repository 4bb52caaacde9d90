package query_test

import (
	"net/http/httptest"
	"testing"

	"Parking/internal/pkg/query"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPageNormalizes(t *testing.T) {
	assert.Equal(t, query.Page{Number: 1, Size: 20}, query.NewPage(0, 0))
	assert.Equal(t, query.Page{Number: 3, Size: 100}, query.NewPage(3, 500))
	assert.Equal(t, query.DefaultPage(), query.NewPage(-1, -1))
}

func TestPageFromGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=2&limit=5", nil)
	assert.Equal(t, query.Page{Number: 2, Size: 5}, query.PageFromGin(c))

	c.Request = httptest.NewRequest("GET", "/?page=abc", nil)
	assert.Equal(t, query.DefaultPage(), query.PageFromGin(c))
}

func TestNewResultPages(t *testing.T) {
	res := query.NewResult([]int{1, 2}, query.NewPage(1, 2), 5)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext())

	last := query.NewResult([]int{5}, query.NewPage(3, 2), 5)
	assert.False(t, last.HasNext())

	empty := query.NewResult([]int{}, query.DefaultPage(), 0)
	assert.Equal(t, 1, empty.TotalPages)
}
