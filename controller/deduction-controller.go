package controller

import (
	"strconv"

	"tabulator/app_error"
	"tabulator/repository"
	"tabulator/service"
	"tabulator/utils"

	"github.com/gin-gonic/gin"
)

type DeductionController struct {
	deductionService *service.DeductionService
}

func NewDeductionController(services *Services) *DeductionController {
	return &DeductionController{deductionService: services.Deductions}
}

func setupDeductionController(services *Services) []RouteInfo {
	e := NewDeductionController(services)
	routes := []RouteInfo{
		{Method: "POST", Path: "/categories/:category_id/deductions", HandlerFunc: e.requestDeductionHandler(), Authenticated: true, RequiredRoles: service.DeductionRequesters},
		{Method: "GET", Path: "/categories/:category_id/deductions", HandlerFunc: e.getDeductionsHandler(), Authenticated: true},
		{Method: "GET", Path: "/deductions/:deduction_id", HandlerFunc: e.getDeductionHandler(), Authenticated: true},
		{Method: "POST", Path: "/deductions/:deduction_id/approve", HandlerFunc: e.approveDeductionHandler(), Authenticated: true, RequiredRoles: service.DeductionApprovers},
		{Method: "POST", Path: "/deductions/:deduction_id/reject", HandlerFunc: e.rejectDeductionHandler(), Authenticated: true, RequiredRoles: service.DeductionApprovers},
	}
	return routes
}

// @id RequestDeduction
// @Description Files a pending point deduction against a contestant
// @Security BearerAuth
// @Tags deductions
// @Accept json
// @Produce json
// @Param category_id path int true "Category Id"
// @Param body body DeductionCreate true "Deduction to request"
// @Success 201 {object} Deduction
// @Router /categories/{category_id}/deductions [post]
func (e *DeductionController) requestDeductionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		var deductionCreate DeductionCreate
		if !bindJSON(c, &deductionCreate) {
			return
		}
		deduction, err := e.deductionService.RequestDeduction(c, getActor(c), service.DeductionRequest{
			CategoryID:   categoryId,
			ContestantID: deductionCreate.ContestantId,
			Points:       deductionCreate.Points,
			Reason:       deductionCreate.Reason,
		})
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(201, toDeductionResponse(deduction))
	}
}

// @id GetDeductions
// @Description Lists the deductions of a category
// @Security BearerAuth
// @Tags deductions
// @Produce json
// @Param category_id path int true "Category Id"
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param contestant_id query int false "Contestant Id"
// @Success 200 {array} Deduction
// @Router /categories/{category_id}/deductions [get]
func (e *DeductionController) getDeductionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId, ok := intParam(c, "category_id")
		if !ok {
			return
		}
		filter := repository.DeductionFilter{CategoryID: categoryId}
		if status := c.Query("status"); status != "" {
			deductionStatus := repository.DeductionStatus(status)
			filter.Status = &deductionStatus
		}
		if contestant := c.Query("contestant_id"); contestant != "" {
			contestantId, err := strconv.Atoi(contestant)
			if err != nil {
				abort(c, app_error.Validation("invalid contestant_id %q", contestant))
				return
			}
			filter.ContestantID = &contestantId
		}
		deductions, err := e.deductionService.GetDeductions(c, filter)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, utils.Map(deductions, toDeductionResponse))
	}
}

// @id GetDeduction
// @Description Fetches a deduction by id
// @Security BearerAuth
// @Tags deductions
// @Produce json
// @Param deduction_id path int true "Deduction Id"
// @Success 200 {object} Deduction
// @Router /deductions/{deduction_id} [get]
func (e *DeductionController) getDeductionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deductionId, ok := intParam(c, "deduction_id")
		if !ok {
			return
		}
		deduction, err := e.deductionService.GetDeduction(c, deductionId)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, toDeductionResponse(deduction))
	}
}

// @id ApproveDeduction
// @Description Approves a pending deduction. Fails with 409 once the deduction is resolved or the category sealed.
// @Security BearerAuth
// @Tags deductions
// @Accept json
// @Produce json
// @Param deduction_id path int true "Deduction Id"
// @Param body body Signature true "Approver signature"
// @Success 200 {object} Deduction
// @Router /deductions/{deduction_id}/approve [post]
func (e *DeductionController) approveDeductionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deductionId, ok := intParam(c, "deduction_id")
		if !ok {
			return
		}
		var signature Signature
		if !bindJSON(c, &signature) {
			return
		}
		deduction, err := e.deductionService.ApproveDeduction(c, getActor(c), deductionId, signature.Signature)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, toDeductionResponse(deduction))
	}
}

// @id RejectDeduction
// @Description Rejects a pending deduction
// @Security BearerAuth
// @Tags deductions
// @Accept json
// @Produce json
// @Param deduction_id path int true "Deduction Id"
// @Param body body DeductionRejection true "Rejection reason"
// @Success 200 {object} Deduction
// @Router /deductions/{deduction_id}/reject [post]
func (e *DeductionController) rejectDeductionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		deductionId, ok := intParam(c, "deduction_id")
		if !ok {
			return
		}
		var rejection DeductionRejection
		if !bindJSON(c, &rejection) {
			return
		}
		deduction, err := e.deductionService.RejectDeduction(c, getActor(c), deductionId, rejection.Reason)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(200, toDeductionResponse(deduction))
	}
}
