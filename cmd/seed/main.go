package main

import (
	"context"
	"flag"
	"os"

	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/config"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/database"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/events"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/logger"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/repository"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/seed"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/service"
	"github.com/sysu-ecnc-dev/employee-registry/backend/internal/utils"
)

func main() {
	var op int
	var n int
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 从 CSV 文件导入员工)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&file, "file", "", "CSV 文件路径，表头为 name,email,department,role")
	flag.Parse()

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("seed", "development").Err(err).Msg("无法读取配置文件")
		os.Exit(1)
	}

	log := logger.NewLogger("seed", cfg.Environment)
	ctx := log.WithContext(context.Background())

	// 创建数据库连接池
	dbpool, err := database.Open(ctx, cfg)
	if err != nil {
		log.Err(err).Msg("无法连接到数据库")
		os.Exit(1)
	}
	defer dbpool.Close()

	validate, _, err := utils.NewValidator()
	if err != nil {
		log.Err(err).Msg("无法创建 validator")
		os.Exit(1)
	}

	// 种子数据不发送欢迎邮件
	repo := repository.NewRepository(cfg, dbpool)
	svc := service.NewEmployeeService(repo, events.NopPublisher{}, validate)

	var result seed.Result

	// 执行操作
	switch op {
	case 0:
		log.Error().Msg("未指定操作")
		return
	case 1:
		if n <= 0 {
			log.Error().Int("n", n).Msg("请输入合法的员工数量")
			return
		}
		result, err = seed.InsertRandomEmployees(ctx, svc, n, cfg.Seed.Concurrency, cfg.Seed.EmailDomain)
	case 2:
		if file == "" {
			log.Error().Msg("请指定 CSV 文件")
			return
		}
		f, openErr := os.Open(file)
		if openErr != nil {
			log.Err(openErr).Str("file", file).Msg("打开文件失败")
			return
		}
		defer f.Close()
		result, err = seed.ImportCSV(ctx, f, svc)
	default:
		log.Error().Int("op", op).Msg("指定的操作非法")
		return
	}

	if err != nil {
		log.Err(err).Msg("插入员工失败")
	}
	log.Info().
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("插入员工完成")
}
