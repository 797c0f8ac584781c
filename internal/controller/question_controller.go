package controller

import (
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	Selector        *service.QuestionSelector
	QuestionService *service.QuestionService
}

func NewQuestionController(selector *service.QuestionSelector, questionService *service.QuestionService) *QuestionController {
	return &QuestionController{Selector: selector, QuestionService: questionService}
}

// List godoc
// @Summary 获取测试题目
// @Description 学生只能看到本次作答抽到的题目，且不包含答案；教师和管理员看到全部字段
// @Tags 题目
// @Produce json
// @Param test_id query int true "测试ID"
// @Param attempt_id query int false "作答ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "缺少 test_id"
// @Failure 404 {object} util.Response "测试或作答不存在"
// @Router /api/questions [get]
func (c *QuestionController) List(ctx *gin.Context) {
	who, ok := requester(ctx)
	if !ok {
		return
	}

	var testID uint
	if raw := ctx.Query("test_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			util.BadRequest(ctx, "invalid test_id")
			return
		}
		testID = uint(id)
	}
	attemptID, err := util.ParseOptionalUint(ctx.Query("attempt_id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt_id")
		return
	}

	sel, err := c.Selector.Select(ctx.Request.Context(), service.SelectRequest{
		TestID:    testID,
		AttemptID: attemptID,
		Requester: who,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, sel.Payload())
}

func (c *QuestionController) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	q, err := c.QuestionService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

func (c *QuestionController) Create(ctx *gin.Context) {
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.QuestionService.Create(ctx.Request.Context(), in)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

func (c *QuestionController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var in service.QuestionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	q, err := c.QuestionService.Update(ctx.Request.Context(), id, in)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

func (c *QuestionController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.QuestionService.Delete(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}
