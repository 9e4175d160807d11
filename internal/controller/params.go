package controller

import (
	"strconv"

	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// pathID 解析路径中的正整数 id，失败时已写出 400
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bindJSON 绑定失败时已写出 400
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		util.BadRequest(ctx, err.Error())
		return false
	}
	return true
}

// queryBool 接受 1/true/yes
func queryBool(ctx *gin.Context, name string) bool {
	switch ctx.Query(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}
