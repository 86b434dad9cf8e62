package controller

import (
	"strings"

	"tabulator/app_error"
	"tabulator/auth"
	"tabulator/service"
	"tabulator/utils"

	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

type RouteInfo struct {
	Method        string
	Path          string
	HandlerFunc   gin.HandlerFunc
	Authenticated bool
	RequiredRoles []service.Role
}

// Services bundles the engine operations the HTTP layer exposes.
type Services struct {
	Categories    *service.CategoryService
	Scores        *service.ScoreService
	Deductions    *service.DeductionService
	Certification *service.CertificationService
	Results       *service.ResultService
}

func SetRoutes(r *gin.Engine, services *Services, cacheStore persistence.CacheStore, standings *StandingsBroadcaster) {
	routes := make([]RouteInfo, 0)
	routes = append(routes, setupCategoryController(services, cacheStore)...)
	routes = append(routes, setupScoreController(services)...)
	routes = append(routes, setupDeductionController(services)...)
	routes = append(routes, setupCertificationController(services)...)
	routes = append(routes, setupResultController(services, standings)...)
	group := r.Group("/api")
	for _, route := range routes {
		handlerfuncs := make([]gin.HandlerFunc, 0)
		if route.Authenticated {
			handlerfuncs = append(handlerfuncs, AuthMiddleware(route.RequiredRoles))
		}
		handlerfuncs = append(handlerfuncs, route.HandlerFunc)
		group.Handle(route.Method, route.Path, handlerfuncs...)
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	if cookie, err := c.Cookie("auth"); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware resolves the bearer token into an actor. An empty role list
// admits any authenticated actor.
func AuthMiddleware(roles []service.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Unauthenticated"})
			return
		}
		claims, err := auth.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Unauthenticated"})
			return
		}
		actor := claims.Actor()
		if len(roles) > 0 && !utils.Contains(roles, actor.Role) {
			c.AbortWithStatusJSON(403, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func getActor(c *gin.Context) service.Actor {
	return c.MustGet(actorKey).(service.Actor)
}

// abort writes err with the status of its kind.
func abort(c *gin.Context, err error) {
	app_error.WithHTTPStatus(c, err)
	c.Abort()
}
