package controller

import (
	"fmt"
	"net/http"
	"unicode"

	"lms_backend/internal/middleware"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// 徽章图片上限 2MB
const maxBadgeImageSize = 2 << 20

type BadgeController struct {
	Badges *service.BadgeService
}

func NewBadgeController(badges *service.BadgeService) *BadgeController {
	return &BadgeController{Badges: badges}
}

// @Summary 徽章获得者
// @Description 指定 download=csv|json 时以附件形式下载
// @Tags 徽章
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "徽章ID"
// @Param download query string false "下载格式"
// @Success 200 {object} util.Response{data=service.BadgeRecipientsReport}
// @Router /badges/{id}/recipients [get]
func (c *BadgeController) Recipients(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	ac := middleware.Authorization(ctx)

	download := ctx.Query("download")
	if download == "" {
		report, err := c.Badges.Recipients(ctx.Request.Context(), ac, id)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		util.Success(ctx, report)
		return
	}

	for _, r := range download {
		if !unicode.IsLetter(r) {
			util.BadRequest(ctx, "invalid download format")
			return
		}
	}
	dl, err := c.Badges.Download(ctx.Request.Context(), ac, id, download)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	ctx.Data(http.StatusOK, dl.ContentType, dl.Body)
}

// @Summary 上传徽章图片
// @Tags 徽章
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "徽章ID"
// @Param file formData file true "图片"
// @Success 200 {object} util.Response
// @Router /badges/{id}/image [post]
func (c *BadgeController) UploadImage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if file.Size > maxBadgeImageSize {
		util.BadRequest(ctx, "file too large")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}
	defer src.Close()

	url, err := c.Badges.UploadImage(ctx.Request.Context(), middleware.Authorization(ctx), id, file.Filename, src, file.Size)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"imageurl": url})
}
