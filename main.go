package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"tabulator/audit"
	"tabulator/config"
	"tabulator/controller"
	"tabulator/docs"
	"tabulator/parser"
	"tabulator/service"

	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"gorm.io/gorm"
)

// the actor that seeds the competition file at startup
var seedActor = service.Actor{ID: 0, Role: service.RoleOrganizer}

// @title           Tabulator API
// @version         1.0
// @description     Scoring and certification engine for judged competitions.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	t := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Env()
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	auditSink, closeAudit := initAudit(cfg)
	defer closeAudit()
	services := initServices(db, cfg, auditSink)

	if cfg.CompetitionFile != "" {
		if err := parser.SeedFromFile(ctx, services.Categories, seedActor, cfg.CompetitionFile); err != nil {
			log.Fatalf("Failed to seed competition from %s: %v", cfg.CompetitionFile, err)
		}
	}

	standings := controller.NewStandingsBroadcaster(services, time.Duration(cfg.ResultRefreshSeconds)*time.Second)
	go standings.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	err = r.SetTrustedProxies(nil)
	if err != nil {
		fmt.Println("Failed to set trusted proxies:", err)
		return
	}
	addLogger(r)
	addMetrics(r)
	addDocs(r)
	setCors(r)
	cacheStore := persistence.NewInMemoryStore(60 * time.Second)
	controller.SetRoutes(r, services, cacheStore, standings)
	fmt.Println("Server started in", time.Since(t))
	err = r.Run(":" + cfg.Port)
	if err != nil {
		fmt.Println("Failed to start server:", err)
	}
}

func initServices(db *gorm.DB, cfg *config.Config, auditSink audit.Sink) *controller.Services {
	judges := service.NewJudgeDirectory(db)
	certification := service.NewCertificationService(db, judges, auditSink)
	return &controller.Services{
		Categories:    service.NewCategoryService(db),
		Scores:        service.NewScoreService(db, judges, certification),
		Deductions:    service.NewDeductionService(db, certification, service.Policy{AllowSelfApproval: cfg.AllowSelfApproval}, auditSink),
		Certification: certification,
		Results:       service.NewResultService(db),
	}
}

// initAudit always logs audit records and additionally forwards them to kafka
// and discord when those are configured.
func initAudit(cfg *config.Config) (audit.Sink, func()) {
	sinks := audit.MultiSink{audit.LogSink{}}
	closers := make([]func() error, 0)

	if cfg.KafkaBroker != "" {
		if err := config.CreateAuditTopic(cfg); err != nil {
			log.Printf("Failed to create audit topic %s: %v", cfg.AuditTopic, err)
		}
		writer, err := config.GetAuditWriter(cfg)
		if err != nil {
			log.Fatalf("Failed to create audit writer: %v", err)
		}
		sinks = append(sinks, audit.NewKafkaSink(writer))
		closers = append(closers, writer.Close)
	}
	if cfg.DiscordBotToken != "" && cfg.DiscordChannelID != "" {
		discordSink, err := audit.NewDiscordSink(cfg.DiscordBotToken, cfg.DiscordChannelID)
		if err != nil {
			log.Fatalf("Failed to create discord audit sink: %v", err)
		}
		sinks = append(sinks, discordSink)
	}

	return sinks, func() {
		for _, closer := range closers {
			if err := closer(); err != nil {
				log.Printf("Failed to close audit sink: %v", err)
			}
		}
	}
}

func addLogger(r *gin.Engine) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/api/metrics"},
	}))
}

func addMetrics(r *gin.Engine) {
	p := ginprometheus.NewPrometheus("gin")
	re := regexp.MustCompile(`\d+`)
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		url := strings.Split(c.Request.URL.String(), "?")[0]
		url = re.ReplaceAllString(url, "?")
		return strings.TrimPrefix(url, "/api")
	}
	p.MetricsPath = "/api/metrics"
	p.Use(r)
}

func addDocs(r *gin.Engine) {
	docs.SwaggerInfo.BasePath = "/api"
	r.GET("/api/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

func setCors(r *gin.Engine) {
	corsConfigGetOptions := cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	corsConfigOtherMethods := cors.Config{
		AllowOrigins: []string{
			"http://localhost",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(func(c *gin.Context) {
		if c.Request.Method == "OPTIONS" {
			// the preflighted method decides which policy applies
			requestedMethod := c.GetHeader("Access-Control-Request-Method")
			if requestedMethod == "GET" || requestedMethod == "OPTIONS" {
				cors.New(corsConfigGetOptions)(c)
			} else {
				cors.New(corsConfigOtherMethods)(c)
			}
			c.AbortWithStatus(204)
			return
		}

		if c.Request.Method == "GET" {
			cors.New(corsConfigGetOptions)(c)
		} else {
			cors.New(corsConfigOtherMethods)(c)
		}
	})
}
