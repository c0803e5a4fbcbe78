// dasherd runs a worker-side order coordinator as a daemon: it mirrors
// the open job pool over the push and poll channels and logs every
// change, the way the dasher app's job screen would render it.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"campuseats/internal/coordinator"
	"campuseats/internal/logger"
	"campuseats/internal/models"
	"campuseats/internal/notify"
	"campuseats/internal/repository"
	"campuseats/internal/repository/postgres"
)

// identityTimeout bounds the startup identity check so the daemon
// never hangs on a slow backend.
const identityTimeout = 5 * time.Second

func main() {
	databaseDSN := flag.String("d", os.Getenv("DATABASE_URI"), "campus eats database DSN")
	amqpURL := flag.String("q", os.Getenv("AMQP_URL"), "order events broker URL")
	workerID := flag.Uint64("w", 0, "dasher account id")
	logLevel := flag.String("l", "debug", "log level")
	flag.Parse()

	if err := logger.Initialize(*logLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	if *workerID == 0 {
		logger.Log.Fatal("dasher account id is required (-w)")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := postgres.New(ctx, *databaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// bounded identity check: an unreachable identity source means
	// unauthenticated, not an indefinite wait
	idCtx, idCancel := context.WithTimeout(ctx, identityTimeout)
	user, err := repository.NewUserRepository(db).GetUserByID(idCtx, *workerID)
	idCancel()
	if err != nil {
		logger.Log.Fatal("Dasher identity could not be resolved", zap.Uint64("id", *workerID), zap.Error(err))
	}
	if user.Role != models.RoleDasher {
		logger.Log.Fatal("Account is not a dasher", zap.String("login", user.Login))
	}

	var sub coordinator.Subscriber
	bus, err := notify.Dial(*amqpURL)
	if err != nil {
		logger.Log.Warn("Order event broker unavailable, relying on polling", zap.Error(err))
	} else {
		defer bus.Close()
		sub = bus
	}

	orderRepo := repository.NewOrderRepository(db)

	coord := coordinator.NewWorker(orderRepo, sub, *workerID,
		coordinator.WithOnChange(func(order models.Order) {
			switch {
			case order.Status == models.OrderStatusPending && order.WorkerID == nil:
				logger.Log.Info("job available",
					zap.Uint64("order", order.ID),
					zap.Int64("total_cents", order.TotalCents),
					zap.Int64("tip_cents", order.TipCents),
					zap.String("building", order.Building))
			case order.WorkerID != nil && *order.WorkerID == *workerID:
				logger.Log.Info("my job updated",
					zap.Uint64("order", order.ID),
					zap.String("status", order.Status))
			default:
				logger.Log.Debug("job left the pool",
					zap.Uint64("order", order.ID),
					zap.String("status", order.Status))
			}
		}),
	)

	if err := coord.Run(ctx); err != nil {
		logger.Log.Fatal("Error starting coordinator", zap.Error(err))
	}
	logger.Log.Info("dasherd running", zap.String("login", user.Login))

	<-ctx.Done()
	coord.Stop()
	logger.Log.Info("dasherd stopped")
}
