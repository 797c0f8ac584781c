package controller

import (
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// requester reads the authenticated caller; it writes 401 and returns false
// when there is none.
func requester(ctx *gin.Context) (service.Requester, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return service.Requester{}, false
	}
	return service.Requester{UserID: claims.UserID, Role: claims.Role}, true
}

// pathID parses a positive numeric path parameter, writing 400 otherwise.
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
