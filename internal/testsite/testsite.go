// Package testsite 管理验收测试用的站点：安装、清空、删除与测试模式开关。
package testsite

import (
	"context"
	"errors"
	"fmt"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"os"
	"path/filepath"
	"reflect"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// TestModeFile 存在于数据目录中即表示测试模式开启
	TestModeFile = "test_environment_enabled.txt"
	// DefaultSiteName 未配置站点名时使用
	DefaultSiteName = "Acceptance test site"

	adminUsername = "admin"
	adminPassword = "admin"
)

var (
	ErrNotInstalled     = errors.New("test site is not installed")
	ErrTestModeDisabled = errors.New("test mode is not enabled for this data root")
	ErrNotTestSite      = errors.New("test mode is enabled but the server is not configured as a test site")
)

// 删除数据目录时保留
var keepOnDrop = map[string]bool{"lock": true}

// 重置数据目录时保留
var keepOnReset = map[string]bool{"lock": true, TestModeFile: true}

// Flusher 清空缓存，编辑页缓存实现了它
type Flusher interface {
	Flush(ctx context.Context) error
}

type Util struct {
	DB       *gorm.DB
	DataRoot string
	SiteName string
	Cache    Flusher
}

func New(db *gorm.DB, dataRoot, siteName string, cache Flusher) *Util {
	if siteName == "" {
		siteName = DefaultSiteName
	}
	return &Util{DB: db, DataRoot: dataRoot, SiteName: siteName, Cache: cache}
}

// SiteInfo 测试站点状态
type SiteInfo struct {
	SiteName  string `json:"sitename"`
	DataRoot  string `json:"dataroot"`
	Driver    string `json:"driver"`
	Installed bool   `json:"installed"`
	TestMode  bool   `json:"testmode"`
	Users     int64  `json:"users"`
	Courses   int64  `json:"courses"`
}

func (u *Util) tablesExist() bool {
	m := u.DB.Migrator()
	for _, mdl := range database.Models() {
		if m.HasTable(mdl) {
			return true
		}
	}
	return false
}

// InstallSite 已有任何表时返回 ErrSiteInstalled
func (u *Util) InstallSite(ctx context.Context) error {
	if u.tablesExist() {
		return util.ErrSiteInstalled
	}
	if err := u.ResetDataRoot(); err != nil {
		return err
	}

	db := u.DB.WithContext(ctx)
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := u.seed(db); err != nil {
		return err
	}
	logger.Log.Info("测试站点已安装", zap.String("site", u.SiteName), zap.String("dataroot", u.DataRoot))
	return nil
}

// seed 站点课程、站点名与管理员 admin/admin
func (u *Util) seed(db *gorm.DB) error {
	if err := database.Seed(db, u.SiteName); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.User{
		Username:  adminUsername,
		Email:     "admin@example.com",
		FirstName: "Admin",
		LastName:  "User",
		Password:  string(hashed),
		SiteRole:  model.SiteAdmin,
	}
	return db.Create(admin).Error
}

// DropSite 删除全部表并清空数据目录
func (u *Util) DropSite(ctx context.Context) error {
	models := database.Models()
	m := u.DB.WithContext(ctx).Migrator()
	for i := len(models) - 1; i >= 0; i-- {
		if !m.HasTable(models[i]) {
			continue
		}
		if err := m.DropTable(models[i]); err != nil {
			return fmt.Errorf("drop %s: %w", reflect.TypeOf(models[i]).Elem().Name(), err)
		}
	}
	return u.DropDataRoot()
}

// DropDataRoot 删除数据目录下除 lock 外的所有内容
func (u *Util) DropDataRoot() error {
	return u.clearDataRoot(keepOnDrop)
}

// ResetDataRoot 同时保留测试模式标记
func (u *Util) ResetDataRoot() error {
	return u.clearDataRoot(keepOnReset)
}

func (u *Util) clearDataRoot(keep map[string]bool) error {
	if u.DataRoot == "" {
		return fmt.Errorf("%w: test site data root is not configured", util.ErrValidation)
	}
	entries, err := os.ReadDir(u.DataRoot)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if keep[e.Name()] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(u.DataRoot, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (u *Util) testModeFile() string {
	return filepath.Join(u.DataRoot, TestModeFile)
}

// StartTestMode 站点必须已安装；已开启时不做任何事
func (u *Util) StartTestMode(ctx context.Context) error {
	if !u.tablesExist() {
		return ErrNotInstalled
	}
	if u.IsTestModeEnabled() {
		return nil
	}
	if err := os.MkdirAll(u.DataRoot, 0755); err != nil {
		return err
	}
	content := "The test site data root and database are currently in use by the HTTP server\n"
	return os.WriteFile(u.testModeFile(), []byte(content), 0644)
}

// StopTestMode 返回 false 表示原本就未开启
func (u *Util) StopTestMode() (bool, error) {
	if !u.IsTestModeEnabled() {
		return false, nil
	}
	if err := os.Remove(u.testModeFile()); err != nil {
		return false, err
	}
	return true, nil
}

func (u *Util) IsTestModeEnabled() bool {
	if u.DataRoot == "" {
		return false
	}
	_, err := os.Stat(u.testModeFile())
	return err == nil
}

// ResetAllData 清空所有表后重新播种，并清理数据目录与缓存
func (u *Util) ResetAllData(ctx context.Context) error {
	if !u.tablesExist() {
		return ErrNotInstalled
	}
	err := u.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		models := database.Models()
		for i := len(models) - 1; i >= 0; i-- {
			mdl := models[i]
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(mdl).Error; err != nil {
				return err
			}
		}
		return u.seed(tx)
	})
	if err != nil {
		return err
	}
	if err := u.ResetDataRoot(); err != nil {
		return err
	}
	if u.Cache != nil {
		if err := u.Cache.Flush(ctx); err != nil {
			return err
		}
	}
	logger.Log.Info("测试站点数据已重置")
	return nil
}

func (u *Util) SiteInfo(ctx context.Context) (*SiteInfo, error) {
	info := &SiteInfo{
		SiteName: u.SiteName,
		DataRoot: u.DataRoot,
		Driver:   u.DB.Dialector.Name(),
		TestMode: u.IsTestModeEnabled(),
	}
	if !u.tablesExist() {
		return info, nil
	}
	info.Installed = true

	name, ok, err := repository.NewSettingRepository(u.DB).Get(ctx, "fullname")
	if err != nil {
		return nil, err
	}
	if ok && name != "" {
		info.SiteName = name
	}

	db := u.DB.WithContext(ctx)
	if err := db.Model(&model.User{}).Count(&info.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Course{}).Count(&info.Courses).Error; err != nil {
		return nil, err
	}
	return info, nil
}

// CheckServerMode 测试站点只能在测试模式下对外服务，反之亦然
func CheckServerMode(serveTestSite bool, dataRoot string) error {
	if dataRoot == "" {
		if serveTestSite {
			return fmt.Errorf("%w: test site data root is not configured", util.ErrValidation)
		}
		return nil
	}
	enabled := (&Util{DataRoot: dataRoot}).IsTestModeEnabled()
	switch {
	case serveTestSite && !enabled:
		return ErrTestModeDisabled
	case !serveTestSite && enabled:
		return ErrNotTestSite
	}
	return nil
}
