package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nft-marketplace/internal/index"
	"nft-marketplace/internal/marketplace"
)

// AssetAdmin is the mint/approve administration surface of the asset
// registry, used by the dev endpoints
type AssetAdmin interface {
	Mint(collection marketplace.Address, tokenID uint64, owner marketplace.Address) error
	Approve(collection marketplace.Address, tokenID uint64, caller, operator marketplace.Address) error
}

// Handler handles HTTP requests for the marketplace API
type Handler struct {
	ledger   marketplace.Ledger
	assets   AssetAdmin
	listings index.ListingRepository
	sales    index.SaleRepository
}

// NewHandler creates a new API handler
func NewHandler(ledger marketplace.Ledger, assets AssetAdmin, listings index.ListingRepository, sales index.SaleRepository) *Handler {
	return &Handler{
		ledger:   ledger,
		assets:   assets,
		listings: listings,
		sales:    sales,
	}
}

// ListItem handles POST /v1/listings
func (h *Handler) ListItem(c *gin.Context) {
	var req ListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidArgument(c, "invalid request body")
		return
	}
	if req.Collection == "" || req.Seller == "" {
		writeInvalidArgument(c, "collection and seller are required")
		return
	}

	err := h.ledger.ListItem(marketplace.Address(req.Collection), req.TokenID, req.Price, marketplace.Address(req.Seller))
	if err != nil {
		status, resp := MapErrorToHTTP(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusCreated, ListingResponse{
		Collection: req.Collection,
		TokenID:    req.TokenID,
		Price:      req.Price,
		Seller:     req.Seller,
	})
}

// CancelListing handles DELETE /v1/listings/:collection/:token_id
func (h *Handler) CancelListing(c *gin.Context) {
	collection, tokenID, ok := parseListingKey(c)
	if !ok {
		return
	}
	caller := c.Query("caller")
	if caller == "" {
		writeInvalidArgument(c, "caller is required")
		return
	}

	if err := h.ledger.CancelListing(collection, tokenID, marketplace.Address(caller)); err != nil {
		status, resp := MapErrorToHTTP(err)
		c.JSON(status, resp)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateListing handles PUT /v1/listings/:collection/:token_id
func (h *Handler) UpdateListing(c *gin.Context) {
	collection, tokenID, ok := parseListingKey(c)
	if !ok {
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidArgument(c, "invalid request body")
		return
	}
	if req.Caller == "" {
		writeInvalidArgument(c, "caller is required")
		return
	}

	err := h.ledger.UpdateListing(collection, tokenID, req.Price, marketplace.Address(req.Caller))
	if err != nil {
		status, resp := MapErrorToHTTP(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, ListingResponse{
		Collection: string(collection),
		TokenID:    tokenID,
		Price:      req.Price,
		Seller:     req.Caller,
	})
}

// GetListing handles GET /v1/listings/:collection/:token_id
func (h *Handler) GetListing(c *gin.Context) {
	collection, tokenID, ok := parseListingKey(c)
	if !ok {
		return
	}

	listing, found := h.ledger.GetListing(collection, tokenID)
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    string(ErrorCodeNotListed),
			Message: "no active listing",
		})
		return
	}

	c.JSON(http.StatusOK, ListingResponse{
		Collection: string(collection),
		TokenID:    tokenID,
		Price:      listing.Price,
		Seller:     string(listing.Seller),
	})
}

// ListCollectionListings handles GET /v1/collections/:collection/listings
func (h *Handler) ListCollectionListings(c *gin.Context) {
	collection := marketplace.Address(c.Param("collection"))
	activeOnly := c.DefaultQuery("status", "active") == "active"
	limit := parseLimit(c)

	views, err := h.listings.ListByCollection(c.Request.Context(), collection, activeOnly, limit)
	if err != nil {
		status, resp := MapErrorToHTTP(err)
		c.JSON(status, resp)
		return
	}

	out := make([]ListingViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ListingViewResponse{
			Collection: string(v.Collection),
			TokenID:    v.TokenID,
			Seller:     string(v.Seller),
			Price:      v.Price,
			Status:     string(v.Status),
			ListedAt:   v.ListedAt,
			UpdatedAt:  v.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"listings": out})
}

// ListCollectionSales handles GET /v1/collections/:collection/sales
func (h *Handler) ListCollectionSales(c *gin.Context) {
	collection := marketplace.Address(c.Param("collection"))
	limit := parseLimit(c)

	var fromSequence int64
	if raw := c.Query("from_sequence"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			writeInvalidArgument(c, "invalid from_sequence")
			return
		}
		fromSequence = parsed
	}

	views, err := h.sales.ListByCollection(c.Request.Context(), collection, fromSequence, limit)
	if err != nil {
		status, resp := MapErrorToHTTP(err)
		c.JSON(status, resp)
		return
	}

	out := make([]SaleViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, SaleViewResponse{
			SaleID:     v.SaleID,
			Collection: string(v.Collection),
			TokenID:    v.TokenID,
			Seller:     string(v.Seller),
			Buyer:      string(v.Buyer),
			Price:      v.Price,
			OccurredAt: v.OccurredAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sales": out})
}

// BuyItem handles POST /v1/purchases
func (h *Handler) BuyItem(c *gin.Context) {
	var req BuyItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidArgument(c, "invalid request body")
		return
	}
	if req.Collection == "" || req.Buyer == "" {
		writeInvalidArgument(c, "collection and buyer are required")
		return
	}

	err := h.ledger.BuyItem(marketplace.Address(req.Collection), req.TokenID, marketplace.Address(req.Buyer), req.Value)
	if err != nil {
		status, resp := MapErrorToHTTP(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"collection": req.Collection,
		"token_id":   req.TokenID,
		"buyer":      req.Buyer,
		"price":      req.Value,
	})
}

// WithdrawProceeds handles POST /v1/withdrawals
func (h *Handler) WithdrawProceeds(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidArgument(c, "invalid request body")
		return
	}
	if req.Seller == "" {
		writeInvalidArgument(c, "seller is required")
		return
	}

	amount, err := h.ledger.WithdrawProceeds(marketplace.Address(req.Seller))
	if err != nil {
		status, resp := MapErrorToHTTP(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, WithdrawResponse{
		Seller: req.Seller,
		Amount: amount,
	})
}

// GetProceeds handles GET /v1/proceeds/:seller
func (h *Handler) GetProceeds(c *gin.Context) {
	seller := c.Param("seller")

	c.JSON(http.StatusOK, ProceedsResponse{
		Seller:   seller,
		Proceeds: h.ledger.GetProceeds(marketplace.Address(seller)),
	})
}

// MintAsset handles POST /v1/assets
func (h *Handler) MintAsset(c *gin.Context) {
	var req MintAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidArgument(c, "invalid request body")
		return
	}
	if req.Collection == "" || req.Owner == "" {
		writeInvalidArgument(c, "collection and owner are required")
		return
	}

	err := h.assets.Mint(marketplace.Address(req.Collection), req.TokenID, marketplace.Address(req.Owner))
	if err != nil {
		status, resp := MapErrorToHTTP(err)
		c.JSON(status, resp)
		return
	}

	c.Status(http.StatusCreated)
}

// ApproveAsset handles POST /v1/assets/approve
func (h *Handler) ApproveAsset(c *gin.Context) {
	var req ApproveAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidArgument(c, "invalid request body")
		return
	}
	if req.Collection == "" || req.Caller == "" {
		writeInvalidArgument(c, "collection and caller are required")
		return
	}

	err := h.assets.Approve(marketplace.Address(req.Collection), req.TokenID,
		marketplace.Address(req.Caller), marketplace.Address(req.Operator))
	if err != nil {
		status, resp := MapErrorToHTTP(err)
		c.JSON(status, resp)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseListingKey extracts the collection and token_id path parameters.
// Writes the error response itself when parsing fails.
func parseListingKey(c *gin.Context) (marketplace.Address, uint64, bool) {
	collection := c.Param("collection")
	if collection == "" {
		writeInvalidArgument(c, "collection is required")
		return "", 0, false
	}

	tokenID, err := strconv.ParseUint(c.Param("token_id"), 10, 64)
	if err != nil {
		writeInvalidArgument(c, "invalid token_id")
		return "", 0, false
	}

	return marketplace.Address(collection), tokenID, true
}

func parseLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func writeInvalidArgument(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    string(ErrorCodeInvalidArgument),
		Message: message,
	})
}
