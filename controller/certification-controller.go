package controller

import (
	"tabulator/service"

	"github.com/gin-gonic/gin"
)

type CertificationController struct {
	certificationService *service.CertificationService
}

func NewCertificationController(services *Services) *CertificationController {
	return &CertificationController{certificationService: services.Certification}
}

func setupCertificationController(services *Services) []RouteInfo {
	e := NewCertificationController(services)
	baseUrl := "/categories/:category_id"
	routes := []RouteInfo{
		{Method: "POST", Path: "/sign", HandlerFunc: e.signHandler(), Authenticated: true, RequiredRoles: []service.Role{service.RoleJudge}},
		{Method: "GET", Path: "/certification", HandlerFunc: e.getCertificationHandler()},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

// @id SignCategory
// @Description Signs the category as the calling judge. The signature completing the panel seals the category.
// @Security BearerAuth
// @Tags certification
// @Accept json
// @Produce json
// @Param category_id path int true "Category Id"
// @Param body body Signature true "Judge signature"
// @Success 200 {object} SignOutcome
// @Router /categories/{category_id}/sign [post]
func (e *CertificationController) signHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		var signature Signature
		if !bindJSON(c, &signature) {
			return
		}
		actor := getActor(c)
		outcome, err := e.certificationService.Sign(c, actor, categoryId, actor.ID, signature.Signature)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, SignOutcome{Recorded: outcome.Recorded, Sealed: outcome.Sealed, SealedNow: outcome.SealedNow})
	}
}

// @id GetCertification
// @Description Fetches the signing progress of a category
// @Tags certification
// @Produce json
// @Param category_id path int true "Category Id"
// @Success 200 {object} CertificationStatus
// @Router /categories/{category_id}/certification [get]
func (e *CertificationController) getCertificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		status, err := e.certificationService.GetCertificationStatus(c, categoryId)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, toCertificationStatusResponse(status))
	}
}
