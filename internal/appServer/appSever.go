// launching the server, result storage, kafka and the cleanup worker
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/zip-renamer/config"
	"github.com/ds124wfegd/zip-renamer/internal/database"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/archive"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/inspector"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/kafka"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/processor"
	"github.com/ds124wfegd/zip-renamer/internal/pkg/storage"
	"github.com/ds124wfegd/zip-renamer/internal/service"
	"github.com/ds124wfegd/zip-renamer/internal/transport"
	"github.com/ds124wfegd/zip-renamer/internal/worker"
	"github.com/gin-gonic/gin"

	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.SetOutput(os.Stdout)
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	fileStorage := storage.NewFileStorage(cfg.App.StoragePath)
	resultRepo := database.NewResultRepository(fileStorage)

	var producer kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		producer = kafka.NewLogProducer()
	}
	defer producer.Close()

	opts := processor.Options{
		TempDir: cfg.App.TempDir,
		Limits: archive.Limits{
			MaxUncompressedBytes: cfg.App.MaxExtractedMB << 20,
			MaxEntries:           cfg.App.MaxEntries,
		},
	}
	if cfg.App.InspectImages {
		opts.Inspector = inspector.NewImageInspector()
	}
	archiveProcessor := processor.NewArchiveProcessor(opts)

	archiveService := service.NewArchiveService(resultRepo, producer, archiveProcessor, cfg.App.ResultTTL, cfg.App.OutputName)
	archiveHandler := transport.NewArchiveHandler(archiveService, cfg.App.MaxUploadMB<<20, cfg.App.OutputName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanupWorker := worker.NewResultCleanupWorker(archiveService, cfg.App.CleanupInterval)
	go cleanupWorker.Start(ctx)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(archiveHandler)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithFields(logrus.Fields{
		"version":     cfg.Server.AppVersion,
		"environment": cfg.Server.Env,
		"addr":        net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
	}).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
