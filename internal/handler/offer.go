package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"secondhand_market/internal/domain"
	"secondhand_market/internal/service"
	apperrors "secondhand_market/pkg/errors"
	"secondhand_market/pkg/logger"
)

type OfferHandler struct {
	offerService service.OfferService
	log          logger.Logger
}

func NewOfferHandler(offerService service.OfferService, log logger.Logger) *OfferHandler {
	return &OfferHandler{
		offerService: offerService,
		log:          log,
	}
}

type CreateOfferRequest struct {
	ListingID  int64 `json:"listingId" binding:"required"`
	OfferPrice int   `json:"offerPrice"`
}

func (h *OfferHandler) CreateOffer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.New(apperrors.ErrInvalidInput, "listingId and offerPrice are required"))
		return
	}

	result, err := h.offerService.CreateOffer(c.Request.Context(), req.ListingID, userID, req.OfferPrice)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *OfferHandler) Accept(c *gin.Context) {
	h.respond(c, domain.OfferDecisionAccept)
}

func (h *OfferHandler) Reject(c *gin.Context) {
	h.respond(c, domain.OfferDecisionReject)
}

func (h *OfferHandler) respond(c *gin.Context, decision domain.OfferDecision) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	offerID, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	offer, err := h.offerService.RespondToOffer(c.Request.Context(), offerID, userID, decision)
	if err != nil {
		// an offer that is no longer pending is a bad request on these endpoints
		if errors.Is(err, apperrors.ErrConflict) {
			err = apperrors.NewAPIError(err.Error(), http.StatusBadRequest)
		}
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offer": offer})
}
