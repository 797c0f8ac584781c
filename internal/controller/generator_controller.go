package controller

import (
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GeneratorController exposes the AI quiz generator and its quiz/attempt
// store under /api/generator.
type GeneratorController struct {
	Generator *service.QuizGeneratorService
}

func NewGeneratorController(generator *service.QuizGeneratorService) *GeneratorController {
	return &GeneratorController{Generator: generator}
}

// Generate godoc
// @Summary AI 生成选择题
// @Tags 出题
// @Accept json
// @Produce json
// @Param body body service.GenerateRequest true "主题、题目数量、类型(topic|paragraph)"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Please, Enter a Valid Input."
// @Failure 503 {object} util.Response "服务繁忙"
// @Router /api/generator/generate [post]
func (c *GeneratorController) Generate(ctx *gin.Context) {
	var req service.GenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, service.MsgInvalidInput)
		return
	}
	questions, err := c.Generator.Generate(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

func (c *GeneratorController) ListQuizzes(ctx *gin.Context) {
	quizzes, err := c.Generator.Store.ListQuizzes(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

func (c *GeneratorController) SaveQuiz(ctx *gin.Context) {
	var quiz model.Quiz
	if err := ctx.ShouldBindJSON(&quiz); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if id := ctx.Param("id"); id != "" {
		quiz.ID = id
	}
	saved, err := c.Generator.SaveQuiz(ctx.Request.Context(), quiz)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, saved)
}

func (c *GeneratorController) GetQuiz(ctx *gin.Context) {
	quiz, err := c.Generator.Store.GetQuiz(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

func (c *GeneratorController) RemoveQuiz(ctx *gin.Context) {
	if err := c.Generator.Store.RemoveQuiz(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": ctx.Param("id")})
}

func (c *GeneratorController) ListAttempts(ctx *gin.Context) {
	attempts, err := c.Generator.Store.ListAttemptsForQuiz(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

type QuizAttemptRequest struct {
	User    string              `json:"user"`
	Answers map[int]interface{} `json:"answers"`
}

func (c *GeneratorController) SubmitAttempt(ctx *gin.Context) {
	var req QuizAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	attempt, err := c.Generator.SubmitAttempt(ctx.Request.Context(), ctx.Param("id"), req.User, req.Answers)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

func (c *GeneratorController) GetAttemptLimit(ctx *gin.Context) {
	limit, err := c.Generator.Store.AttemptLimit(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"quizId": ctx.Param("id"), "limit": limit})
}

type AttemptLimitRequest struct {
	Limit int `json:"limit" binding:"gte=0"`
}

func (c *GeneratorController) SetAttemptLimit(ctx *gin.Context) {
	var req AttemptLimitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.Generator.Store.SetAttemptLimit(ctx.Request.Context(), ctx.Param("id"), req.Limit); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"quizId": ctx.Param("id"), "limit": req.Limit})
}

type SessionRequest struct {
	User string         `json:"user"`
	Role model.UserRole `json:"role"`
}

func (c *GeneratorController) GetSession(ctx *gin.Context) {
	rc := ctx.Request.Context()
	user, err := c.Generator.Store.CurrentUser(rc)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	role, err := c.Generator.Store.CurrentRole(rc)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, SessionRequest{User: user, Role: role})
}

func (c *GeneratorController) SetSession(ctx *gin.Context) {
	var req SessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	rc := ctx.Request.Context()
	if err := c.Generator.Store.SetCurrentRole(rc, req.Role); err != nil {
		util.RespondError(ctx, err)
		return
	}
	if err := c.Generator.Store.SetCurrentUser(rc, req.User); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, req)
}
