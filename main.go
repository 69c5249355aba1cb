// @title Prompt Library 后端 API
// @version 1.0
// @description 提示词库后端：提交、审核、版本历史、投票与收藏。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"
	"prompt_library_backend/internal/app"
	"prompt_library_backend/internal/config"
	"prompt_library_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	createAdmin := flag.String("create-admin", "", "创建或提升管理员账号，格式 username:password")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *createAdmin != "" {
		username, password, _ := strings.Cut(*createAdmin, ":")
		if err := application.EnsureAdmin(context.Background(), username, password); err != nil {
			logger.Log.Fatal("Failed to create admin", zap.Error(err))
		}
	}

	// 迁移完成后直接退出
	if *migrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		application.Close(context.Background())
		return
	}

	application.Run()
}
