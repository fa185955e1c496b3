package main

import (
	"flag"
	"log"
	"strings"

	"moneybook/config"
	"moneybook/database"
	"moneybook/middleware"
	"moneybook/router"
)

// @title 个人消费管理 API
// @version 1.0
// @description 个人消费管理系统 API，支持消费流水管理、预算目标、统计分析、消费洞察和数据导出功能
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const version = "1.0.0"

var (
	configFile  = flag.String("config", "", "外部配置文件路径（可选）")
	listenPort  = flag.String("port", "", "监听端口，覆盖配置文件，如 8080 或 :8080")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

// normalizePort 补全端口前缀的冒号
func normalizePort(port string) string {
	if port != "" && !strings.HasPrefix(port, ":") {
		return ":" + port
	}
	return port
}

func main() {
	flag.Parse()

	if *showVersion {
		log.Printf("moneybook v%s", version)
		return
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if p := normalizePort(*listenPort); p != "" {
		cfg.Server.Port = p
	}
	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}
	middleware.InitJWT(cfg)

	r := router.SetupRouter(cfg)

	log.Printf("服务已启动，监听 %s", cfg.Server.Port)
	log.Printf("接口文档: http://localhost%s/swagger/index.html", cfg.Server.Port)

	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}
