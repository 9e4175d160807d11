package controller

import (
	"lms_backend/internal/middleware"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionBankController struct {
	Bank *service.QuestionBankService
}

func NewQuestionBankController(bank *service.QuestionBankService) *QuestionBankController {
	return &QuestionBankController{Bank: bank}
}

type DeleteQuestionsRequest struct {
	IDs               []uint `json:"ids" binding:"required,min=1"`
	DeleteAllVersions bool   `json:"deleteallversions"`
}

// @Summary 删除题目前的确认提示
// @Tags 题库
// @Security ApiKeyAuth
// @Produce json
// @Param ids query string true "逗号分隔的题目ID"
// @Param deleteallversions query bool false "是否删除全部版本"
// @Success 200 {object} util.Response{data=service.DeleteConfirmation}
// @Router /questions/delete-confirmation [get]
func (c *QuestionBankController) DeleteConfirmation(ctx *gin.Context) {
	ids, err := util.ParseIDList(ctx.Query("ids"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	all := queryBool(ctx, "deleteallversions")

	res, err := c.Bank.DeleteConfirmation(ctx.Request.Context(), middleware.Authorization(ctx), ids, all)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 删除题目
// @Description 被测验使用的题目只隐藏不删除
// @Tags 题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body DeleteQuestionsRequest true "题目"
// @Success 200 {object} util.Response{data=service.DeleteQuestionsResult}
// @Router /questions/delete [post]
func (c *QuestionBankController) DeleteQuestions(ctx *gin.Context) {
	var req DeleteQuestionsRequest
	if !bindJSON(ctx, &req) {
		return
	}
	res, err := c.Bank.Delete(ctx.Request.Context(), middleware.Authorization(ctx), req.IDs, req.DeleteAllVersions)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 题目版本信息
// @Tags 题库
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response{data=service.VersionInfo}
// @Router /questions/{id}/version-info [get]
func (c *QuestionBankController) VersionInfo(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	res, err := c.Bank.VersionInfo(ctx.Request.Context(), middleware.Authorization(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
