package server

import (
	"groupbuy-commerce/internal/config"
	"groupbuy-commerce/internal/handler"
	authmw "groupbuy-commerce/internal/middleware"
	"groupbuy-commerce/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo              *echo.Echo
	cfg               *config.Auth
	campaignHandler   *handler.CampaignHandler
	purchaseHandler   *handler.PurchaseHandler
	catalogHandler    *handler.CatalogHandler
	merchantHandler   *handler.MerchantHandler
	settlementHandler *handler.SettlementHandler
}

func NewServer(
	authCfg *config.Auth,
	campaignService service.CampaignService,
	purchaseService service.PurchaseService,
	catalogService service.CatalogService,
	merchantService service.MerchantService,
	settlementService service.SettlementService,
) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:              e,
		cfg:               authCfg,
		campaignHandler:   handler.NewCampaignHandler(campaignService),
		purchaseHandler:   handler.NewPurchaseHandler(purchaseService),
		catalogHandler:    handler.NewCatalogHandler(catalogService),
		merchantHandler:   handler.NewMerchantHandler(merchantService),
		settlementHandler: handler.NewSettlementHandler(settlementService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	api.POST("/merchants", s.merchantHandler.CreateMerchant)
	api.GET("/products", s.catalogHandler.ListProducts)

	auth := authmw.AuthMiddleware(s.cfg.JWTSecret)

	// -------- merchant ops --------
	merchant := api.Group("", auth, authmw.RequireRole("merchant"))
	merchant.POST("/products", s.catalogHandler.CreateProduct)
	merchant.GET("/revenue", s.merchantHandler.Revenue)
	merchant.POST("/fees", s.merchantHandler.SetFee)

	// -------- campaigns --------
	campaigns := api.Group("/campaigns")
	campaigns.GET("/:productID", s.campaignHandler.Get)
	// finalize is time-gated, not identity-gated: anyone may resolve a
	// campaign once its deadline has passed
	campaigns.POST("/:productID/finalize", s.campaignHandler.Finalize)
	campaigns.POST("/:productID/contribute", s.campaignHandler.Contribute, auth)
	campaigns.POST("/:productID/withdraw", s.campaignHandler.Withdraw, auth)

	// -------- direct purchases --------
	purchases := api.Group("/purchases", auth)
	purchases.POST("", s.purchaseHandler.Buy)
	purchases.GET("", s.purchaseHandler.List)
	purchases.POST("/:id/review", s.purchaseHandler.MarkReviewed)

	// -------- settlement protocol callback --------
	api.POST("/settlement/apply", s.settlementHandler.ApplyPayment,
		auth, authmw.RequireProtocolIdentity(s.cfg.ProtocolSubject))
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
