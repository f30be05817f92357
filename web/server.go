package web

import (
	"context"
	"log"

	"cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"

	"aqua/auth"
	"aqua/blob/blob"
	blobmem "aqua/blob/mem"
	"aqua/blob/supa"
	"aqua/config"
	dbt "aqua/db/db"
	dbmem "aqua/db/mem"
	"aqua/db/pg"
	"aqua/relay/gcppubsub"
	"aqua/relay/goch"
	"aqua/relay/rabbit"
	"aqua/relay/relay"
	"aqua/relay/wsp"
	"aqua/water"
)

type ServiceConfig struct {
	IsDev     bool
	Port      string
	DBMode    string // "postgres" or "memory"
	RelayMode relay.Mode
}

func newDBWrapper(cfg ServiceConfig) dbt.WaterDBWrapper {
	if cfg.DBMode == "memory" {
		log.Println("Using in-memory database")
		return dbmem.NewInMemoryWaterDBWrapper(nil)
	}
	gormDB, err := pg.InitPostgresGORM(pg.CreateDSN())
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	return pg.NewGORMWaterDBWrapper(gormDB)
}

func newBlobStore(cfg ServiceConfig) blob.Store {
	if cfg.IsDev {
		log.Println("Using in-memory receipt store")
		return blobmem.NewStore()
	}
	store, err := supa.NewStore()
	if err != nil {
		log.Fatalf("Failed to set up receipt storage: %v", err)
	}
	return store
}

func newReminderRelay(cfg ServiceConfig) relay.ReminderRelay {
	switch cfg.RelayMode {
	case relay.ModeRabbitMQ:
		conn := rabbit.NewRabbitConnection(rabbit.CreateAmqpURL())
		reminderRelay, err := rabbit.NewRabbitReminderRelay(conn)
		if err != nil {
			log.Fatalf("Failed to set up rabbitmq relay: %v", err)
		}
		return reminderRelay
	case relay.ModeGCPPubSub:
		ctx := context.Background()
		client, err := pubsub.NewClient(ctx, gcppubsub.GetGCPProjectID())
		if err != nil {
			log.Fatalf("Failed to create pubsub client: %v", err)
		}
		reminderRelay, err := gcppubsub.NewPubSubReminderRelay(ctx, client, "water_reminders")
		if err != nil {
			log.Fatalf("Failed to set up pubsub relay: %v", err)
		}
		return reminderRelay
	case relay.ModeWhatsAppWS:
		reminderRelay, err := wsp.NewWhatsAppReminderRelay()
		if err != nil {
			log.Fatalf("Failed to set up whatsapp relay: %v", err)
		}
		return reminderRelay
	default:
		log.Println("Using in-process reminder channel")
		reminderRelay := goch.NewChannelReminderRelay(64)
		go func() {
			for msg := range reminderRelay.Sent() {
				log.Printf("reminder for %s: %s", msg.Phone, msg.Text)
			}
		}()
		return reminderRelay
	}
}

func setupRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)

	api.GET("/config", h.GetConfig)
	api.PUT("/config", h.UpdateConfig)
	api.POST("/config/amount-ack", h.ToggleAmountUpdated)

	api.GET("/members", h.ListMembers)
	api.POST("/members", h.AddMember)
	api.GET("/members/:id", h.GetMember)
	api.PUT("/members/:id", h.UpdateMember)
	api.DELETE("/members/:id", h.RemoveMember)

	api.POST("/members/:id/payments", h.RecordReceiptPayment)
	api.POST("/members/:id/payments/cash", h.RecordCashPayment)
	api.PUT("/members/:id/payments/:month/receipt", h.UpdateReceipt)
	api.DELETE("/members/:id/payments/:month", h.DeletePayment)

	api.POST("/rollover", h.StartNewMonth)
	api.POST("/reminders", h.SendReminders)
	api.GET("/stats", h.GetStats)
}

func Serve(cfg ServiceConfig) {
	if !cfg.IsDev {
		gin.SetMode(gin.ReleaseMode)
	}

	sessions := auth.NewServiceFromEnv()
	service := water.NewService(
		newDBWrapper(cfg), newBlobStore(cfg), newReminderRelay(cfg), config.AppLink())

	r := gin.New()
	setupMiddlewares(r, sessions)
	setupRoutes(r, NewHandler(service, sessions))

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
