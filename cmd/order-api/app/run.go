package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/sMiccu/shoporder/configs"
	"github.com/sMiccu/shoporder/internal/adapter/cache"
	"github.com/sMiccu/shoporder/internal/adapter/catalog"
	"github.com/sMiccu/shoporder/internal/adapter/http"
	"github.com/sMiccu/shoporder/internal/adapter/http/middleware"
	"github.com/sMiccu/shoporder/internal/adapter/kafka"
	"github.com/sMiccu/shoporder/internal/adapter/queue"
	"github.com/sMiccu/shoporder/internal/adapter/repo"
	"github.com/sMiccu/shoporder/internal/logging"
	"github.com/sMiccu/shoporder/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)
	log.Info("starting up", "http_addr", cfg.App.HTTPAddr)

	// mysql
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return nil, nil, err
	}

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	outboxRepo := repo.NewMySQLOutboxRepo(db)
	products := catalog.NewMySQLProductStore(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisOrderCache(rdb, cfg.Cache.StatusTTL)
	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}

	appCtx, stop := context.WithCancel(context.Background())

	// outbox relay: pushes committed domain events to rabbitmq
	relay := queue.NewOutboxRelay(outboxRepo, producer, logging.New("outbox"),
		queue.WithInterval(cfg.Outbox.Interval),
		queue.WithBatchSize(cfg.Outbox.BatchSize),
		queue.WithRetryBackoff(cfg.Outbox.RetryBackoff),
	)
	go func() {
		if err := relay.Run(appCtx); err != nil && appCtx.Err() == nil {
			log.Error("outbox relay stopped", "err", err)
		}
	}()

	// queue consumers (audit trail of published order events)
	if err := setupQueue(ch, logging.New("queue")); err != nil {
		stop()
		return nil, nil, err
	}

	// kafka listener for fulfillment status updates
	if err := setupKafkaListener(appCtx, cfg, orderRepo, statusCache); err != nil {
		stop()
		return nil, nil, err
	}

	// use cases
	createUC := usecase.NewCreateOrder(orderRepo, idem)
	addItemUC := usecase.NewAddItemToOrder(orderRepo, products)
	removeItemUC := usecase.NewRemoveItemFromOrder(orderRepo, products)
	confirmUC := usecase.NewConfirmOrder(orderRepo)
	cancelUC := usecase.NewCancelOrder(orderRepo, products)
	getUC := usecase.NewGetOrder(orderRepo)

	// http
	h := http.NewOrderHandler(createUC, addItemUC, removeItemUC, confirmUC, cancelUC, getUC)
	th := http.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	router := http.NewRouter(h, th, authz)

	cleanup := func() {
		stop()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel, log *slog.Logger) error {
	h := queue.NewAuditHandler(log)

	router := queue.NewRouter(ch, log, queue.WithPrefetch(50))
	router.Register("order.confirmed.q", queue.JSONHandler[usecase.OrderEventMsg]{HandleFunc: h.HandleEvent})
	router.Register("order.cancelled.q", queue.JSONHandler[usecase.OrderEventMsg]{HandleFunc: h.HandleEvent})

	return router.Start()
}

func setupKafkaListener(ctx context.Context, cfg configs.Config, orderRepo *repo.MySQLOrderRepo, statusCache *cache.RedisOrderCache) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return err
	}

	log := logging.New("kafka")
	update := usecase.NewUpdateFulfillment(orderRepo, statusCache)
	h := kafka.NewFulfillmentHandler(update, log)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.FulfillmentTopic}, h.Handle, log)

	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("kafka consumer stopped", "err", err)
		}
	}()
	return nil
}
