package controller

import (
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// Start godoc
// @Summary 开始作答
// @Description 已有进行中的作答时直接返回该作答
// @Tags 作答
// @Produce json
// @Param id path int true "测试ID"
// @Success 201 {object} util.Response "新建作答"
// @Success 200 {object} util.Response "继续已有作答"
// @Failure 403 {object} util.Response "测试未开放"
// @Failure 409 {object} util.Response "超过最大作答次数"
// @Router /api/tests/{id}/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	who, ok := requester(ctx)
	if !ok {
		return
	}
	testID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	res, err := c.AttemptService.Start(ctx.Request.Context(), testID, who.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	if res.Resumed {
		util.Success(ctx, res)
		return
	}
	util.Created(ctx, res)
}

func (c *AttemptController) Get(ctx *gin.Context) {
	who, ok := requester(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	a, err := c.AttemptService.Get(ctx.Request.Context(), id, who)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

func (c *AttemptController) ListByTest(ctx *gin.Context) {
	testID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	attempts, err := c.AttemptService.ListByTest(ctx.Request.Context(), testID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

type SubmitAttemptRequest struct {
	Answers map[int]interface{} `json:"answers"`
}

// Submit godoc
// @Summary 提交作答
// @Tags 作答
// @Accept json
// @Produce json
// @Param id path int true "作答ID"
// @Param body body SubmitAttemptRequest true "答案，键为题目ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "作答已评分"
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	who, ok := requester(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.AttemptService.Submit(ctx.Request.Context(), id, who.UserID, req.Answers)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

type ViolationRequest struct {
	ViolationType string `json:"violation_type" binding:"required"`
	Details       string `json:"details"`
}

// @Router /api/attempts/{id}/violations [post]
func (c *AttemptController) RecordViolation(ctx *gin.Context) {
	who, ok := requester(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ViolationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.AttemptService.RecordViolation(ctx.Request.Context(), id, who.UserID, model.ViolationKind(req.ViolationType), req.Details)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"window_switches":     a.WindowSwitches,
		"screenshot_attempts": a.ScreenshotAttempts,
		"phone_calls":         a.PhoneCalls,
		"total_violations":    a.TotalViolations,
	})
}
