package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"energy-server/internal/config"
	"energy-server/internal/handler"
	"energy-server/internal/model"

	"github.com/gin-gonic/gin"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	migrate := flag.Bool("migrate", false, "是否执行数据库迁移")
	initAdmin := flag.Bool("init-admin", false, "初始化管理员账号与默认组织")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	if err := model.InitDB(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	log.Println("数据库连接成功")

	// 自动执行数据库迁移（确保表结构是最新的）
	log.Println("检查数据库表结构...")
	if err := model.AutoMigrate(); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	// 数据库迁移（仅迁移模式）
	if *migrate {
		log.Println("数据库迁移完成")
		os.Exit(0)
	}

	// 初始化管理员账号
	if *initAdmin {
		log.Println("初始化管理员账号...")

		adminEmail := "admin@example.com"
		adminPassword := "admin123"

		var existingUser model.User
		if err := model.DB.Where("email = ?", adminEmail).First(&existingUser).Error; err == nil {
			log.Println("管理员账号已存在")
			os.Exit(0)
		}

		tx := model.DB.Begin()

		// 创建管理员账号
		admin := model.User{
			Email:  adminEmail,
			Name:   "管理员",
			Status: model.UserStatusActive,
		}
		if err := admin.SetPassword(adminPassword); err != nil {
			tx.Rollback()
			log.Fatalf("密码加密失败: %v", err)
		}
		if err := tx.Create(&admin).Error; err != nil {
			tx.Rollback()
			log.Fatalf("创建管理员失败: %v", err)
		}

		// 创建默认组织与预置角色
		org := model.Organization{
			Name:   "默认组织",
			Slug:   "default",
			Status: model.OrgStatusActive,
		}
		if err := tx.Create(&org).Error; err != nil {
			tx.Rollback()
			log.Fatalf("创建默认组织失败: %v", err)
		}

		roles := model.DefaultRoles(org.ID)
		if err := tx.Create(&roles).Error; err != nil {
			tx.Rollback()
			log.Fatalf("创建默认角色失败: %v", err)
		}

		var ownerRoleID string
		for _, r := range roles {
			if r.Slug == model.RoleOwner {
				ownerRoleID = r.ID
				break
			}
		}

		membership := model.UserOrganizationRole{
			UserID:     admin.ID,
			OrgID:      org.ID,
			RoleID:     ownerRoleID,
			AssignedAt: time.Now(),
		}
		if err := tx.Create(&membership).Error; err != nil {
			tx.Rollback()
			log.Fatalf("创建成员关系失败: %v", err)
		}

		tx.Commit()

		log.Println("管理员账号创建成功!")
		log.Println("邮箱: admin@example.com")
		log.Println("密码: admin123")
		log.Println("")
		log.Println("【重要提示】请登录后立即修改默认密码！")
		os.Exit(0)
	}

	os.MkdirAll("logs", 0755)

	// 创建 Gin 引擎
	r := gin.New()

	// 设置路由
	handler.SetupRouter(r)

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("服务器启动在 http://%s", addr)
	if cfg.Server.TLS.Enabled {
		if err := r.RunTLS(addr, cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil {
			log.Fatalf("服务器启动失败: %v", err)
		}
		return
	}
	if err := r.Run(addr); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}
