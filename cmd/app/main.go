package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dareleague/registration/internal/config"
	"github.com/dareleague/registration/pkg/database"
	"github.com/dareleague/registration/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	service     = "dare-league-registration"
	environment = "production"
	id          = 1
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		panic("Error with reading config")
	}

	if err := execute(net.JoinHostPort(conf.App.Host, conf.App.Port), conf); err != nil {
		os.Exit(1)
	}
}

func execute(addr string, conf *config.Entity) (err error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger, atom := loggerInit()

	if conf.Jag.Dsn != "" {
		tp, err := tracerProvider(conf.Jag.Dsn)
		if err != nil {
			logger.Error("tracer setup failed", zap.Error(err))
		} else {
			otel.SetTracerProvider(tp)
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*5)
				defer shutdownCancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Error("tracer shutdown failed", zap.Error(err))
				}
			}()
		}
	}

	pool := database.PoolCreation(ctx, logger, conf) // Panics if something gone wrong

	defer func() {
		cancel()
		pool.Close()
		logger.Sync()
	}()

	reg := prometheus.NewRegistry()

	mux := chi.NewRouter()
	application := server.NewServer(ctx, logger, mux, pool, conf)
	if err := application.Init(atom, reg); err != nil {
		logger.Error("server init failed", zap.Error(err))
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Start(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errCh:
		logger.Error("server stopped", zap.Error(err))
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
		defer shutdownCancel()
		return application.Shutdown(shutdownCtx)
	}
}

func loggerInit() (*zap.Logger, zap.AtomicLevel) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC1123Z)
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	file, err := os.OpenFile("./logs/logs.txt", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		panic("Error with creating or opening file")
	}

	writeSyncer := zapcore.AddSync(file)
	atom := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, writeSyncer, atom),
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), atom),
	)

	logger := zap.New(core)

	return logger, atom
}

func tracerProvider(url string) (*tracesdk.TracerProvider, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(url)))
	if err != nil {
		return nil, err
	}
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(service),
			attribute.String("environment", environment),
			attribute.Int64("ID", id),
		)),
	)
	return tp, nil
}
