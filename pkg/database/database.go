package database

import (
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector 按配置选择数据库驱动
func Dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "lms.db"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open 只建立连接，不做迁移
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// sqlite 只允许一个写连接
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	if err := Seed(db, "LMS"); err != nil {
		return nil, err
	}
	return db, nil
}

// Models 所有持久化模型，顺序即建表顺序
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Course{},
		&model.Enrolment{},
		&model.SiteSetting{},
		&model.Quiz{},
		&model.QuizSection{},
		&model.QuizSlot{},
		&model.QuestionCategory{},
		&model.QuestionBankEntry{},
		&model.Question{},
		&model.QuestionUsage{},
		&model.QuestionAttempt{},
		&model.QuizAttempt{},
		&model.Badge{},
		&model.BadgeIssued{},
		&model.EventLog{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

// Seed 站点首页课程与站点名称，已存在时跳过
func Seed(db *gorm.DB, siteName string) error {
	var count int64
	db.Model(&model.Course{}).Where("id = ?", model.SiteCourseID).Count(&count)
	if count == 0 {
		site := &model.Course{FullName: siteName, ShortName: "site"}
		site.ID = model.SiteCourseID
		if err := db.Create(site).Error; err != nil {
			return err
		}
	}

	var settings int64
	db.Model(&model.SiteSetting{}).Where("name = ?", "fullname").Count(&settings)
	if settings == 0 {
		if err := db.Create(&model.SiteSetting{Name: "fullname", Value: siteName}).Error; err != nil {
			return err
		}
	}
	return nil
}
