package controller

import (
	"lms_backend/internal/middleware"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Reports *service.ReportService
}

func NewReportController(reports *service.ReportService) *ReportController {
	return &ReportController{Reports: reports}
}

// @Summary 个人资料页的课程报表导航
// @Description 无权查看时返回空列表
// @Tags 报表
// @Security ApiKeyAuth
// @Produce json
// @Param userId path int true "用户ID"
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=[]service.NavigationNode}
// @Router /users/{userId}/courses/{courseId}/report-nodes [get]
func (c *ReportController) ReportNodes(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	nodes, err := c.Reports.ProgressNodes(ctx.Request.Context(), middleware.Authorization(ctx), userID, courseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nodes)
}
