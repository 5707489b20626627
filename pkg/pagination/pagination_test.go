package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParseClampsValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=0&limit=500", nil)

	p := Parse(c)
	assert.Equal(t, Params{Page: 1, Limit: MaxLimit, Offset: 0}, p)
}

func TestWindow(t *testing.T) {
	start, end := Window(45, 3, 20)
	assert.Equal(t, 40, start)
	assert.Equal(t, 45, end)

	start, end = Window(5, 4, 20)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}
