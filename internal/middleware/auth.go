package middleware

import (
	"lms_backend/internal/authz"
	"lms_backend/internal/config"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CourseHeader 请求声明的课程上下文
const CourseHeader = "X-Course-Id"

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		// 文件下载链接无法带请求头
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

func GetClaims(c *gin.Context) *util.Claims {
	v, ok := c.Get(util.ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*util.Claims)
	return claims
}

// Authorization 由令牌与 X-Course-Id 构造调用者身份；未登录时 UserID 为 0
func Authorization(c *gin.Context) authz.AuthorizationContext {
	var ac authz.AuthorizationContext
	if claims := GetClaims(c); claims != nil {
		ac.UserID = claims.UserID
		ac.SiteRole = claims.SiteRole
	}
	if h := c.GetHeader(CourseHeader); h != "" {
		if id, err := strconv.ParseUint(h, 10, 32); err == nil {
			ac.PageCourseID = uint(id)
		}
	}
	return ac
}

// RequireSiteAdmin 仅站点管理员
func RequireSiteAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ac := Authorization(c)
		if ac.UserID == 0 {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !ac.IsSiteAdmin() {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
