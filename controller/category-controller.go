package controller

import (
	"time"

	"tabulator/service"
	"tabulator/utils"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
)

const categoryCacheDuration = 10 * time.Second

type CategoryController struct {
	categoryService *service.CategoryService
}

func NewCategoryController(services *Services) *CategoryController {
	return &CategoryController{categoryService: services.Categories}
}

func setupCategoryController(services *Services, cacheStore persistence.CacheStore) []RouteInfo {
	e := NewCategoryController(services)
	routes := []RouteInfo{
		{Method: "GET", Path: "/categories", HandlerFunc: cache.CachePage(cacheStore, categoryCacheDuration, e.getCategoriesHandler())},
		{Method: "GET", Path: "/categories/:category_id", HandlerFunc: e.getCategoryHandler()},
		{Method: "POST", Path: "/categories", HandlerFunc: e.createCategoryHandler(), Authenticated: true, RequiredRoles: service.CompetitionEditors},
		{Method: "PUT", Path: "/categories/:category_id", HandlerFunc: e.updateCategoryHandler(), Authenticated: true, RequiredRoles: service.CompetitionEditors},
		{Method: "GET", Path: "/categories/:category_id/judges", HandlerFunc: e.getJudgesHandler(), Authenticated: true},
		{Method: "PUT", Path: "/categories/:category_id/judges", HandlerFunc: e.assignJudgesHandler(), Authenticated: true, RequiredRoles: service.CompetitionEditors},
		{Method: "GET", Path: "/contestants", HandlerFunc: cache.CachePage(cacheStore, categoryCacheDuration, e.getContestantsHandler())},
		{Method: "POST", Path: "/contestants", HandlerFunc: e.createContestantHandler(), Authenticated: true, RequiredRoles: service.CompetitionEditors},
	}
	return routes
}

// @id GetCategories
// @Description Lists all categories without their seal state or criteria
// @Tags categories
// @Produce json
// @Success 200 {array} CategorySummary
// @Router /categories [get]
func (e *CategoryController) getCategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := e.categoryService.GetCategories(c)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, utils.Map(categories, toCategorySummaryResponse))
	}
}

// @id GetCategory
// @Description Fetches a category with its criteria
// @Tags categories
// @Produce json
// @Param category_id path int true "Category Id"
// @Success 200 {object} Category
// @Router /categories/{category_id} [get]
func (e *CategoryController) getCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		category, err := e.categoryService.GetCategory(c, categoryId)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, toCategoryResponse(category))
	}
}

// @id CreateCategory
// @Description Creates a category with its criteria
// @Security BearerAuth
// @Tags categories
// @Accept json
// @Produce json
// @Param body body CategoryCreate true "Category to create"
// @Success 201 {object} Category
// @Router /categories [post]
func (e *CategoryController) createCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var categoryCreate CategoryCreate
		if !bindJSON(c, &categoryCreate) {
			return
		}
		category, err := e.categoryService.CreateCategory(c, getActor(c), categoryCreate.toDefinition())
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(201, toCategoryResponse(category))
	}
}

// @id UpdateCategory
// @Description Replaces a category's configuration. Fails once the category has scores.
// @Security BearerAuth
// @Tags categories
// @Accept json
// @Produce json
// @Param category_id path int true "Category Id"
// @Param body body CategoryCreate true "New configuration"
// @Success 200 {object} Category
// @Router /categories/{category_id} [put]
func (e *CategoryController) updateCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		var categoryCreate CategoryCreate
		if !bindJSON(c, &categoryCreate) {
			return
		}
		category, err := e.categoryService.UpdateCategory(c, getActor(c), categoryId, categoryCreate.toDefinition())
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, toCategoryResponse(category))
	}
}

// @id GetJudges
// @Description Fetches the judge panel of a category
// @Security BearerAuth
// @Tags categories
// @Produce json
// @Param category_id path int true "Category Id"
// @Success 200 {object} JudgeAssignment
// @Router /categories/{category_id}/judges [get]
func (e *CategoryController) getJudgesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		judgeIds, err := e.categoryService.GetJudges(c, categoryId)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, JudgeAssignment{JudgeIds: judgeIds})
	}
}

// @id AssignJudges
// @Description Adds judges to the panel of a category
// @Security BearerAuth
// @Tags categories
// @Accept json
// @Param category_id path int true "Category Id"
// @Param body body JudgeAssignment true "Judges to add"
// @Success 204
// @Router /categories/{category_id}/judges [put]
func (e *CategoryController) assignJudgesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		var assignment JudgeAssignment
		if !bindJSON(c, &assignment) {
			return
		}
		if err := e.categoryService.AssignJudges(c, getActor(c), categoryId, assignment.JudgeIds); err != nil {
			abort(c, err)
			return
		}
		c.Status(204)
	}
}

// @id GetContestants
// @Description Fetches all contestants
// @Tags contestants
// @Produce json
// @Success 200 {array} Contestant
// @Router /contestants [get]
func (e *CategoryController) getContestantsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		contestants, err := e.categoryService.GetContestants(c)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, utils.Map(contestants, toContestantResponse))
	}
}

// @id CreateContestant
// @Description Registers a contestant
// @Security BearerAuth
// @Tags contestants
// @Accept json
// @Produce json
// @Param body body ContestantCreate true "Contestant to register"
// @Success 201 {object} Contestant
// @Router /contestants [post]
func (e *CategoryController) createContestantHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var contestantCreate ContestantCreate
		if !bindJSON(c, &contestantCreate) {
			return
		}
		contestant, err := e.categoryService.CreateContestant(c, getActor(c), contestantCreate.toModel())
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(201, toContestantResponse(contestant))
	}
}
