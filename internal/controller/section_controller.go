package controller

import (
	"lms_backend/internal/middleware"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SectionController struct {
	Structure *service.StructureService
}

func NewSectionController(structure *service.StructureService) *SectionController {
	return &SectionController{Structure: structure}
}

type SectionHeadingRequest struct {
	Heading string `json:"heading"`
}

type SectionShuffleRequest struct {
	Shuffle *bool `json:"shuffle" binding:"required"`
}

type AddSectionRequest struct {
	Page    int    `json:"page" binding:"required,min=1"`
	Heading string `json:"heading"`
}

// @Summary 在指定页前新增分节
// @Tags 测验分节
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param body body AddSectionRequest true "分节"
// @Success 200 {object} util.Response{data=service.AddSectionResult}
// @Router /quizzes/{quizId}/sections [post]
func (c *SectionController) AddSection(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	var req AddSectionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.Structure.AddSectionHeading(ctx.Request.Context(), middleware.Authorization(ctx), quizID, req.Page, req.Heading)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 删除分节
// @Description 第一个分节不能删除，被删分节的槽位并入上一分节
// @Tags 测验分节
// @Security ApiKeyAuth
// @Produce json
// @Param quizId path int true "测验ID"
// @Param sectionId path int true "分节ID"
// @Success 200 {object} util.Response{data=service.DeleteSectionResult}
// @Router /quizzes/{quizId}/sections/{sectionId} [delete]
func (c *SectionController) DeleteSection(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	sectionID, ok := pathID(ctx, "sectionId")
	if !ok {
		return
	}
	res, err := c.Structure.DeleteSection(ctx.Request.Context(), middleware.Authorization(ctx), quizID, sectionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 获取分节标题
// @Tags 测验分节
// @Security ApiKeyAuth
// @Produce json
// @Param quizId path int true "测验ID"
// @Param sectionId path int true "分节ID"
// @Success 200 {object} util.Response{data=service.SectionTitleResult}
// @Router /quizzes/{quizId}/sections/{sectionId}/heading [get]
func (c *SectionController) GetHeading(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	sectionID, ok := pathID(ctx, "sectionId")
	if !ok {
		return
	}
	res, err := c.Structure.GetSectionTitle(ctx.Request.Context(), middleware.Authorization(ctx), quizID, sectionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 修改分节标题
// @Description 标题为空表示未命名分节
// @Tags 测验分节
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param sectionId path int true "分节ID"
// @Param body body SectionHeadingRequest true "标题"
// @Success 200 {object} util.Response{data=service.SectionTitleResult}
// @Router /quizzes/{quizId}/sections/{sectionId}/heading [put]
func (c *SectionController) RenameSection(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	sectionID, ok := pathID(ctx, "sectionId")
	if !ok {
		return
	}
	var req SectionHeadingRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.Structure.RenameSection(ctx.Request.Context(), middleware.Authorization(ctx), quizID, sectionID, req.Heading)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 设置分节内题目乱序
// @Tags 测验分节
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param sectionId path int true "分节ID"
// @Param body body SectionShuffleRequest true "是否乱序"
// @Success 200 {object} util.Response{data=service.SectionShuffleResult}
// @Router /quizzes/{quizId}/sections/{sectionId}/shuffle [put]
func (c *SectionController) SetShuffle(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	sectionID, ok := pathID(ctx, "sectionId")
	if !ok {
		return
	}
	var req SectionShuffleRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.Structure.SetSectionShuffle(ctx.Request.Context(), middleware.Authorization(ctx), quizID, sectionID, *req.Shuffle)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
