package controller

import (
	"tabulator/service"
	"tabulator/utils"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	resultService        *service.ResultService
	certificationService *service.CertificationService
	standings            *StandingsBroadcaster
}

func NewResultController(services *Services, standings *StandingsBroadcaster) *ResultController {
	return &ResultController{
		resultService:        services.Results,
		certificationService: services.Certification,
		standings:            standings,
	}
}

func setupResultController(services *Services, standings *StandingsBroadcaster) []RouteInfo {
	e := NewResultController(services, standings)
	baseUrl := "/categories/:category_id"
	routes := []RouteInfo{
		{Method: "GET", Path: "/results", HandlerFunc: e.getCategoryResultsHandler()},
		{Method: "GET", Path: "/results/ws", HandlerFunc: e.standings.WebSocketHandler},
		{Method: "GET", Path: "/contestants/:contestant_id/result", HandlerFunc: e.getResultHandler()},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

// @id GetResult
// @Description Computes a contestant's current result in a category
// @Tags results
// @Produce json
// @Param category_id path int true "Category Id"
// @Param contestant_id path int true "Contestant Id"
// @Success 200 {object} Result
// @Router /categories/{category_id}/contestants/{contestant_id}/result [get]
func (e *ResultController) getResultHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		contestantId, ok := intParam(c, "contestant_id")
		if !ok {
			return
		}
		result, err := e.resultService.GetResult(c, categoryId, contestantId)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, toResultResponse(*result))
	}
}

// @id GetCategoryResults
// @Description Computes the ranked standings of a category
// @Tags results
// @Produce json
// @Param category_id path int true "Category Id"
// @Success 200 {object} CategoryStandings
// @Router /categories/{category_id}/results [get]
func (e *ResultController) getCategoryResultsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		standings, err := e.resultService.GetCategoryResults(c, categoryId)
		if err != nil {
			abort(c, err)
			return
		}
		sealed, err := e.certificationService.IsSealed(c, categoryId)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, CategoryStandings{
			CategoryId: categoryId,
			Sealed:     sealed,
			Standings:  utils.Map(standings, toStandingResponse),
		})
	}
}
