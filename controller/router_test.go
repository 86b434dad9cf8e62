package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tabulator/auth"
	"tabulator/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(roles []service.Role) *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthMiddleware(roles), func(c *gin.Context) {
		c.JSON(200, getActor(c))
	})
	r.GET("/items/:item_id", func(c *gin.Context) {
		id, ok := intParam(c, "item_id")
		if !ok {
			return
		}
		c.JSON(200, gin.H{"id": id})
	})
	return r
}

func tokenFor(t *testing.T, actor service.Actor) string {
	token, err := auth.CreateToken(actor)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	judge := service.Actor{ID: 3, Role: service.RoleJudge}
	cases := []struct {
		name   string
		roles  []service.Role
		header string
		status int
	}{
		{"no token", nil, "", 401},
		{"garbage token", nil, "Bearer not-a-jwt", 401},
		{"any authenticated actor", nil, "Bearer " + tokenFor(t, judge), 200},
		{"matching role", []service.Role{service.RoleJudge}, "Bearer " + tokenFor(t, judge), 200},
		{"missing role", []service.Role{service.RoleTallyMaster, service.RoleAuditor}, "Bearer " + tokenFor(t, judge), 403},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			newAuthRouter(tc.roles).ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAuthMiddlewareExposesActor(t *testing.T) {
	actor := service.Actor{ID: 11, Role: service.RoleAuditor}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth", Value: tokenFor(t, actor)})
	newAuthRouter(nil).ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var got service.Actor
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, actor, got)
}

func TestIntParamRejectsNonNumericIds(t *testing.T) {
	w := httptest.NewRecorder()
	newAuthRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/abc", nil))

	assert.Equal(t, 400, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION", body["kind"])
}
