package api

import (
	"github.com/gin-gonic/gin"

	"nft-marketplace/internal/index"
	"nft-marketplace/internal/marketplace"
)

// NewRouter creates the marketplace API router
func NewRouter(ledger marketplace.Ledger, assets AssetAdmin, listings index.ListingRepository, sales index.SaleRepository) *gin.Engine {
	handler := NewHandler(ledger, assets, listings, sales)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	v1 := router.Group("/v1")
	{
		v1.POST("/listings", handler.ListItem)
		v1.DELETE("/listings/:collection/:token_id", handler.CancelListing)
		v1.PUT("/listings/:collection/:token_id", handler.UpdateListing)
		v1.GET("/listings/:collection/:token_id", handler.GetListing)

		v1.GET("/collections/:collection/listings", handler.ListCollectionListings)
		v1.GET("/collections/:collection/sales", handler.ListCollectionSales)

		v1.POST("/purchases", handler.BuyItem)
		v1.POST("/withdrawals", handler.WithdrawProceeds)
		v1.GET("/proceeds/:seller", handler.GetProceeds)

		// Dev/admin surface for seeding assets
		v1.POST("/assets", handler.MintAsset)
		v1.POST("/assets/approve", handler.ApproveAsset)
	}

	return router
}
