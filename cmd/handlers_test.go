package main

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAdmin(t *testing.T) {
	c := &clientContext{}
	assert.False(t, c.isAdmin())

	c.claims = &serviceClaims{Role: "user"}
	assert.False(t, c.isAdmin())

	c.claims = &serviceClaims{Role: "admin"}
	assert.True(t, c.isAdmin())
}

func adminGinContext(role string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	ginCtx, _ := gin.CreateTestContext(w)
	ginCtx.Request = httptest.NewRequest("POST", "/api/works", nil)

	if role != "" {
		ginCtx.Set("claims", &serviceClaims{UserID: "someone", Role: role})
	}

	return ginCtx, w
}

func TestAdminHandlerAllowsAdmin(t *testing.T) {
	ginCtx, _ := adminGinContext("admin")

	testPoolContext(poolElastic{}).adminHandler(ginCtx)

	assert.False(t, ginCtx.IsAborted())
}

func TestAdminHandlerRejectsNonAdmin(t *testing.T) {
	ginCtx, w := adminGinContext("user")

	testPoolContext(poolElastic{}).adminHandler(ginCtx)

	assert.True(t, ginCtx.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandlerRejectsMissingClaims(t *testing.T) {
	ginCtx, w := adminGinContext("")

	testPoolContext(poolElastic{}).adminHandler(ginCtx)

	assert.True(t, ginCtx.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogResponsePreservesPercentSigns(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	c := &clientContext{reqID: "deadbeef"}

	c.logResponse(searchResponse{status: 200})
	c.logResponse(searchResponse{status: 400, err: fmt.Errorf("bad value: 50%% off")})

	out := buf.String()
	assert.Contains(t, out, "[RESPONSE] status: 200")
	assert.Contains(t, out, "ERROR: [RESPONSE] status: 400, error: bad value: 50% off")
}

func TestGetBearerToken(t *testing.T) {
	token, err := getBearerToken("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	// collapses repeated whitespace
	token, err = getBearerToken("Bearer   abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	for _, bad := range []string{"", "abc123", "Basic abc123", "Bearer", "Bearer undefined"} {
		_, err = getBearerToken(bad)
		assert.Error(t, err, "header %q", bad)
	}
}
