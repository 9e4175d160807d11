package controller

import (
	"lms_backend/internal/form"
	"lms_backend/internal/middleware"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type QuizStructureController struct {
	Structure *service.StructureService
	EditPage  *service.EditPageService
	Settings  *service.QuizSettingsService
}

func NewQuizStructureController(structure *service.StructureService, editPage *service.EditPageService,
	settings *service.QuizSettingsService) *QuizStructureController {
	return &QuizStructureController{Structure: structure, EditPage: editPage, Settings: settings}
}

type MoveSlotRequest struct {
	PreviousID uint `json:"previousid"`
	SectionID  uint `json:"sectionid"`
	Page       int  `json:"page"`
}

type DeleteSlotsRequest struct {
	IDs string `json:"ids" binding:"required"`
}

type PageBreakRequest struct {
	Value int `json:"value" binding:"required,oneof=1 2"`
}

type DependencyRequest struct {
	RequirePrevious *bool `json:"requireprevious" binding:"required"`
}

type MaxMarkRequest struct {
	MaxMark *decimal.Decimal `json:"maxmark" binding:"required"`
}

type RepaginateRequest struct {
	QuestionsPerPage int `json:"questionsperpage" binding:"min=0"`
}

type MaximumGradeRequest struct {
	Grade *decimal.Decimal `json:"grade" binding:"required"`
}

// @Summary 获取测验编辑页
// @Tags 测验结构
// @Security ApiKeyAuth
// @Produce json
// @Param quizId path int true "测验ID"
// @Success 200 {object} util.Response{data=service.EditPage}
// @Router /quizzes/{quizId}/edit [get]
func (c *QuizStructureController) GetEditPage(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	page, err := c.EditPage.Get(ctx.Request.Context(), middleware.Authorization(ctx), quizID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// @Summary 移动槽位
// @Description previousid 为 0 时移动到 sectionid 所指分节的开头
// @Tags 测验结构
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param slotId path int true "槽位ID"
// @Param body body MoveSlotRequest true "目标位置"
// @Success 200 {object} util.Response{data=service.MoveSlotResult}
// @Router /quizzes/{quizId}/slots/{slotId}/move [post]
func (c *QuizStructureController) MoveSlot(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	slotID, ok := pathID(ctx, "slotId")
	if !ok {
		return
	}
	var req MoveSlotRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.Structure.MoveSlot(ctx.Request.Context(), middleware.Authorization(ctx), quizID, slotID,
		req.PreviousID, req.SectionID, req.Page)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 删除槽位
// @Tags 测验结构
// @Security ApiKeyAuth
// @Produce json
// @Param quizId path int true "测验ID"
// @Param slotId path int true "槽位ID"
// @Success 200 {object} util.Response{data=service.DeleteSlotsResult}
// @Router /quizzes/{quizId}/slots/{slotId} [delete]
func (c *QuizStructureController) DeleteSlot(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	slotID, ok := pathID(ctx, "slotId")
	if !ok {
		return
	}
	res, err := c.Structure.DeleteSlot(ctx.Request.Context(), middleware.Authorization(ctx), quizID, slotID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 批量删除槽位
// @Tags 测验结构
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param body body DeleteSlotsRequest true "逗号分隔的槽位ID"
// @Success 200 {object} util.Response{data=service.DeleteSlotsResult}
// @Router /quizzes/{quizId}/slots/delete [post]
func (c *QuizStructureController) DeleteSlots(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	var req DeleteSlotsRequest
	if !bindJSON(ctx, &req) {
		return
	}
	ids, err := util.ParseIDList(req.IDs)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	res, err := c.Structure.DeleteSlots(ctx.Request.Context(), middleware.Authorization(ctx), quizID, ids)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 合并或拆分分页
// @Description value 1 与上一页合并，2 从该槽位起新开一页
// @Tags 测验结构
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param slotId path int true "槽位ID"
// @Param body body PageBreakRequest true "操作"
// @Success 200 {object} util.Response{data=service.SlotsResult}
// @Router /quizzes/{quizId}/slots/{slotId}/pagebreak [post]
func (c *QuizStructureController) UpdatePageBreak(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	slotID, ok := pathID(ctx, "slotId")
	if !ok {
		return
	}
	var req PageBreakRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.Structure.UpdatePageBreak(ctx.Request.Context(), middleware.Authorization(ctx), quizID, slotID, req.Value)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 设置是否依赖上一题
// @Tags 测验结构
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param slotId path int true "槽位ID"
// @Param body body DependencyRequest true "是否依赖"
// @Success 200 {object} util.Response{data=service.DependencyResult}
// @Router /quizzes/{quizId}/slots/{slotId}/dependency [post]
func (c *QuizStructureController) UpdateDependency(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	slotID, ok := pathID(ctx, "slotId")
	if !ok {
		return
	}
	var req DependencyRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.Structure.UpdateDependency(ctx.Request.Context(), middleware.Authorization(ctx), quizID, slotID, *req.RequirePrevious)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 获取槽位满分
// @Tags 测验结构
// @Security ApiKeyAuth
// @Produce json
// @Param quizId path int true "测验ID"
// @Param slotId path int true "槽位ID"
// @Success 200 {object} util.Response{data=service.MaxMarkResult}
// @Router /quizzes/{quizId}/slots/{slotId}/maxmark [get]
func (c *QuizStructureController) GetMaxMark(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	slotID, ok := pathID(ctx, "slotId")
	if !ok {
		return
	}
	res, err := c.Structure.GetMaxMark(ctx.Request.Context(), middleware.Authorization(ctx), quizID, slotID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 修改槽位满分
// @Tags 测验结构
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param slotId path int true "槽位ID"
// @Param body body MaxMarkRequest true "满分"
// @Success 200 {object} util.Response{data=service.MaxMarkResult}
// @Router /quizzes/{quizId}/slots/{slotId}/maxmark [put]
func (c *QuizStructureController) UpdateMaxMark(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	slotID, ok := pathID(ctx, "slotId")
	if !ok {
		return
	}
	var req MaxMarkRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.Structure.UpdateMaxMark(ctx.Request.Context(), middleware.Authorization(ctx), quizID, slotID, *req.MaxMark)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 重新分页
// @Description questionsperpage 为 0 表示不限，仅在分节边界换页
// @Tags 测验结构
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param body body RepaginateRequest true "每页题数"
// @Success 200 {object} util.Response{data=service.SlotsResult}
// @Router /quizzes/{quizId}/repaginate [post]
func (c *QuizStructureController) Repaginate(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	var req RepaginateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.Structure.Repaginate(ctx.Request.Context(), middleware.Authorization(ctx), quizID, req.QuestionsPerPage)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 修改测验最高分
// @Tags 测验结构
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param body body MaximumGradeRequest true "最高分"
// @Success 200 {object} util.Response{data=service.MaximumGradeResult}
// @Router /quizzes/{quizId}/maximum-grade [put]
func (c *QuizStructureController) UpdateMaximumGrade(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	var req MaximumGradeRequest
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.Structure.UpdateMaximumGrade(ctx.Request.Context(), middleware.Authorization(ctx), quizID, *req.Grade)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 获取测验限时
// @Tags 测验设置
// @Security ApiKeyAuth
// @Produce json
// @Param quizId path int true "测验ID"
// @Success 200 {object} util.Response{data=service.TimeLimitView}
// @Router /quizzes/{quizId}/timelimit [get]
func (c *QuizStructureController) GetTimeLimit(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	res, err := c.Settings.GetTimeLimit(ctx.Request.Context(), middleware.Authorization(ctx), quizID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 修改测验限时
// @Description value 为空表示关闭限时；timeunit 为单位秒数
// @Tags 测验设置
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "测验ID"
// @Param body body form.DurationValue true "时长"
// @Success 200 {object} util.Response{data=service.TimeLimitView}
// @Router /quizzes/{quizId}/timelimit [put]
func (c *QuizStructureController) UpdateTimeLimit(ctx *gin.Context) {
	quizID, ok := pathID(ctx, "quizId")
	if !ok {
		return
	}
	var req form.DurationValue
	if !bindJSON(ctx, &req) {
		return
	}

	res, err := c.Settings.UpdateTimeLimit(ctx.Request.Context(), middleware.Authorization(ctx), quizID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
