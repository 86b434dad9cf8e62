package controller

import (
	"tabulator/service"
	"tabulator/utils"

	"github.com/gin-gonic/gin"
)

type ScoreController struct {
	scoreService *service.ScoreService
}

func NewScoreController(services *Services) *ScoreController {
	return &ScoreController{scoreService: services.Scores}
}

func setupScoreController(services *Services) []RouteInfo {
	e := NewScoreController(services)
	baseUrl := "/categories/:category_id"
	routes := []RouteInfo{
		{Method: "PUT", Path: "/scores", HandlerFunc: e.submitScoreHandler(), Authenticated: true, RequiredRoles: []service.Role{service.RoleJudge}},
		{Method: "GET", Path: "/contestants/:contestant_id/scores", HandlerFunc: e.getScoresHandler(), Authenticated: true},
	}
	for i, route := range routes {
		routes[i].Path = baseUrl + route.Path
	}
	return routes
}

// @id SubmitScore
// @Description Records the calling judge's score for a contestant on one criterion. Resubmitting replaces the previous value.
// @Security BearerAuth
// @Tags scores
// @Accept json
// @Produce json
// @Param category_id path int true "Category Id"
// @Param body body ScoreCreate true "Score to record"
// @Success 200 {object} Score
// @Router /categories/{category_id}/scores [put]
func (e *ScoreController) submitScoreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		var scoreCreate ScoreCreate
		if !bindJSON(c, &scoreCreate) {
			return
		}
		actor := getActor(c)
		score, err := e.scoreService.SubmitScore(c, actor, service.ScoreSubmission{
			CategoryID:   categoryId,
			ContestantID: scoreCreate.ContestantId,
			JudgeID:      actor.ID,
			CriterionID:  scoreCreate.CriterionId,
			Value:        scoreCreate.Value,
			Comment:      scoreCreate.Comment,
		})
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, toScoreResponse(score))
	}
}

// @id GetScores
// @Description Fetches every judge's live scores for a contestant in a category
// @Security BearerAuth
// @Tags scores
// @Produce json
// @Param category_id path int true "Category Id"
// @Param contestant_id path int true "Contestant Id"
// @Success 200 {array} Score
// @Router /categories/{category_id}/contestants/{contestant_id}/scores [get]
func (e *ScoreController) getScoresHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		contestantId, ok := intParam(c, "contestant_id")
		if !ok {
			return
		}
		scores, err := e.scoreService.GetScoresFor(c, categoryId, contestantId)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, utils.Map(scores, toScoreResponse))
	}
}
