package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-manager-api/infrastructure/repository"
	"github.com/vfg2006/sales-manager-api/internal/api"
	"github.com/vfg2006/sales-manager-api/internal/config"
	"github.com/vfg2006/sales-manager-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-manager-api/internal/usecases/cataloging"
	"github.com/vfg2006/sales-manager-api/internal/usecases/customering"
	"github.com/vfg2006/sales-manager-api/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-manager-api/internal/usecases/ordering"
	"github.com/vfg2006/sales-manager-api/internal/usecases/ranking"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	profileRepo := repository.NewProfileRepository(pgConn)
	customerRepo := repository.NewCustomerRepository(pgConn)
	productRepo := repository.NewProductRepository(pgConn)
	orderRepo := repository.NewOrderRepository(pgConn)

	authenticator := authenticating.NewService(profileRepo, cfg)
	customerService := customering.NewService(customerRepo)
	catalogService := cataloging.NewService(productRepo)
	orderService := ordering.NewService(orderRepo, customerRepo, productRepo)
	dashboardService := dashboarding.NewService(orderRepo, customerRepo)
	rankingService := ranking.NewSellerRankingService(orderRepo, customerRepo, cfg)

	server, err := api.New(
		cfg,
		authenticator,
		orderService,
		customerService,
		catalogService,
		dashboardService,
		rankingService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
