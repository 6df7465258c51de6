package main

import (
	"context"
	"fmt"
	"groupbuy-commerce/internal/client"
	"groupbuy-commerce/internal/config"
	"groupbuy-commerce/internal/repository"
	"groupbuy-commerce/internal/server"
	"groupbuy-commerce/internal/service"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitDBClient(cfg.DatabaseURL, cfg.SQLitePath)
	ledgerClient := client.NewLedgerClient(&cfg.Ledger)

	productRepo := repository.NewProductRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	paymentRecordRepo := repository.NewPaymentRecordRepository(db)
	revenueRepo := repository.NewRevenueRepository(db)
	feeRepo := repository.NewFeeRepository(db)

	ctx := context.Background()
	if err := feeRepo.EnsureDefault(ctx, cfg.Fees.DefaultRateBps); err != nil {
		log.Fatal("seed marketplace fee:", err)
	}
	if err := productRepo.Seed(ctx); err != nil {
		log.Fatal("seed products:", err)
	}

	issuer := service.NewIssuerService(purchaseRepo, revenueRepo, ledgerClient)
	campaignService := service.NewCampaignService(
		db, campaignRepo, productRepo, merchantRepo,
		paymentRecordRepo, revenueRepo, feeRepo,
		issuer, ledgerClient, cfg.Ledger.MarketplaceAccount,
	)
	purchaseService := service.NewPurchaseService(
		db, productRepo, merchantRepo, purchaseRepo,
		paymentRecordRepo, feeRepo,
		issuer, ledgerClient, cfg.Ledger.MarketplaceAccount,
	)
	catalogService := service.NewCatalogService(db, productRepo, campaignRepo, merchantRepo)
	merchantService := service.NewMerchantService(merchantRepo, revenueRepo, feeRepo)
	settlementService := service.NewSettlementService(productRepo, campaignService, purchaseService)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(
		&cfg.Auth,
		campaignService,
		purchaseService,
		catalogService,
		merchantService,
		settlementService,
	)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
