package controller

import (
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// List godoc
// @Summary 测试列表
// @Description 学生只能看到已启用的测试
// @Tags 测试
// @Produce json
// @Param course_id query int false "课程ID"
// @Success 200 {object} util.Response
// @Router /api/tests [get]
func (c *TestController) List(ctx *gin.Context) {
	who, ok := requester(ctx)
	if !ok {
		return
	}
	courseID, err := util.ParseOptionalUint(ctx.Query("course_id"))
	if err != nil {
		util.BadRequest(ctx, "invalid course_id")
		return
	}
	tests, err := c.TestService.List(ctx.Request.Context(), who, courseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, tests)
}

func (c *TestController) Get(ctx *gin.Context) {
	who, ok := requester(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	test, err := c.TestService.Get(ctx.Request.Context(), id, who)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// Create godoc
// @Summary 创建测试
// @Tags 测试
// @Accept json
// @Produce json
// @Param body body service.TestInput true "测试信息"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response "缺少必填字段"
// @Router /api/tests [post]
func (c *TestController) Create(ctx *gin.Context) {
	who, ok := requester(ctx)
	if !ok {
		return
	}
	var in service.TestInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	test, err := c.TestService.Create(ctx.Request.Context(), in, who.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, test)
}

func (c *TestController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var in service.TestInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	test, err := c.TestService.Update(ctx.Request.Context(), id, in)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

func (c *TestController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.TestService.Delete(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}
