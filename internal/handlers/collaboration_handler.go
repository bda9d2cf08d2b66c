package handlers

import (
	"net/http"

	"collabhub_backend/internal/middleware"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/services"
	"collabhub_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CollaborationHandler struct {
	*BaseHandler
	collaborationService services.CollaborationService
	requestService       services.RequestService
}

func NewCollaborationHandler(base *BaseHandler, collaborationService services.CollaborationService, requestService services.RequestService) *CollaborationHandler {
	return &CollaborationHandler{
		BaseHandler:          base,
		collaborationService: collaborationService,
		requestService:       requestService,
	}
}

func (h *CollaborationHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Brand only
	brand := r.Group("/collaborations")
	brand.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleBrand))
	{
		brand.POST("", h.CreateCollaboration)
		brand.GET("/my", h.GetMyCollaborations)
		brand.POST("/:collaborationId/close", h.CloseCollaboration)
		brand.DELETE("/:collaborationId", h.DeleteCollaboration)
		brand.GET("/:collaborationId/requests", h.GetCollaborationRequests)
		brand.GET("/interested", h.GetAllInterestedInfluencers)
		brand.GET("/:collaborationId/interested", h.GetInterestedInfluencers)
		brand.POST("/:collaborationId/invite", h.InviteInfluencer)
	}

	// Influencer only
	influencer := r.Group("/collaborations")
	influencer.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleInfluencer))
	{
		influencer.GET("/suggested", h.GetSuggestedCollaborations)
		influencer.POST("/:collaborationId/interest", h.MarkInterested)
	}

	// Any authenticated user
	common := r.Group("/collaborations")
	common.Use(middleware.AuthMiddleware())
	{
		common.GET("/:collaborationId", h.GetCollaboration)
	}
}

// --- Brand handlers ---

func (h *CollaborationHandler) CreateCollaboration(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateCollaborationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.collaborationService.Create(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CollaborationHandler) GetMyCollaborations(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	// ?influencer_id=... добавляет к каждой коллаборации флаг invited
	var query dto.BrandCollaborationsQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	resp, err := h.collaborationService.GetBrandCollaborations(h.GetDB(c), userID, query.InfluencerID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CollaborationHandler) CloseCollaboration(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if err := h.collaborationService.Close(h.GetDB(c), userID, c.Param("collaborationId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func (h *CollaborationHandler) DeleteCollaboration(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if err := h.collaborationService.Delete(h.GetDB(c), userID, c.Param("collaborationId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *CollaborationHandler) GetCollaborationRequests(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.requestService.GetCollaborationRequests(h.GetDB(c), userID, c.Param("collaborationId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CollaborationHandler) GetInterestedInfluencers(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.requestService.GetInterestedInfluencers(h.GetDB(c), userID, c.Param("collaborationId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CollaborationHandler) GetAllInterestedInfluencers(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.requestService.GetAllInterestedInfluencers(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CollaborationHandler) InviteInfluencer(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.InviteInfluencerRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.requestService.Invite(h.GetDB(c), userID, c.Param("collaborationId"), req.InfluencerID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// --- Influencer handlers ---

func (h *CollaborationHandler) GetSuggestedCollaborations(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.collaborationService.GetSuggestedForInfluencer(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collaborations": resp, "total": len(resp)})
}

func (h *CollaborationHandler) MarkInterested(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	resp, err := h.requestService.MarkInterested(h.GetDB(c), userID, c.Param("collaborationId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// --- Common handlers ---

func (h *CollaborationHandler) GetCollaboration(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	role := models.UserRole("")
	if roleVal, exists := c.Get("role"); exists {
		if roleStr, isString := roleVal.(string); isString {
			role = models.UserRole(roleStr)
		} else if r, isRole := roleVal.(models.UserRole); isRole {
			role = r
		}
	}

	resp, err := h.collaborationService.GetDetails(h.GetDB(c), userID, role, c.Param("collaborationId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
