package handlers

import (
	"net/http"

	"collabhub_backend/internal/middleware"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/services"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	*BaseHandler
	requestService services.RequestService
}

func NewRequestHandler(base *BaseHandler, requestService services.RequestService) *RequestHandler {
	return &RequestHandler{
		BaseHandler:    base,
		requestService: requestService,
	}
}

func (h *RequestHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Brand decisions
	brand := r.Group("/requests")
	brand.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleBrand))
	{
		brand.PUT("/:requestId/status", h.UpdateRequestStatus)
		brand.POST("/:requestId/complete", h.CompleteRequest)
	}

	// Influencer responses
	influencer := r.Group("/requests")
	influencer.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleInfluencer))
	{
		influencer.GET("/my", h.GetMyRequests)
		influencer.POST("/:requestId/accept-invitation", h.AcceptInvitation)
		influencer.POST("/:requestId/decline", h.DeclineRequest)
	}
}

// --- Brand handlers ---

// UpdateRequestStatus - решение бренда по заявке: принять или отклонить.
func (h *RequestHandler) UpdateRequestStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateRequestStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	var (
		resp *dto.RequestResponse
		err  error
	)
	switch models.RequestStatus(req.Status) {
	case models.RequestStatusAccepted:
		resp, err = h.requestService.Accept(h.GetDB(c), userID, c.Param("requestId"))
	case models.RequestStatusRejected:
		resp, err = h.requestService.Reject(h.GetDB(c), userID, c.Param("requestId"))
	default:
		h.HandleServiceError(c, apperrors.ErrInvalidRequestStatus)
		return
	}
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) CompleteRequest(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.requestService.Complete(h.GetDB(c), userID, c.Param("requestId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// --- Influencer handlers ---

func (h *RequestHandler) GetMyRequests(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.requestService.GetInfluencerRequests(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) AcceptInvitation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.requestService.AcceptInvitation(h.GetDB(c), userID, c.Param("requestId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) DeclineRequest(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.requestService.Decline(h.GetDB(c), userID, c.Param("requestId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
