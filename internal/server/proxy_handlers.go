package server

import (
	"proxyshare/internal/models"
	"proxyshare/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// ListProxies handles GET /api/proxies.
// Records come back newest upload first; the corpus is expected to stay small,
// so there is no pagination.
func (s *Server) ListProxies(c *fiber.Ctx) error {
	proxies, err := s.proxyRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(proxies)
}

// CreateProxy handles POST /api/proxies.
func (s *Server) CreateProxy(c *fiber.Ctx) error {
	ctx := c.Context()
	user, _ := s.currentUser(c)

	var req struct {
		NodeText         string        `json:"node_text"`
		Region           string        `json:"region"`
		IPType           models.IPType `json:"ip_type"`
		RemainingTraffic string        `json:"remaining_traffic"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.NodeText == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("node_text is required"))
	}
	if !req.IPType.Valid() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("ip_type must be one of datacenter, commercial, residential"))
	}

	// The uploader is always the session user; the client payload is never
	// trusted for ownership.
	proxy := &models.Proxy{
		NodeText:         req.NodeText,
		Region:           req.Region,
		IPType:           req.IPType,
		RemainingTraffic: req.RemainingTraffic,
		UploaderID:       user.ID,
	}

	if err := s.proxyRepo.Create(ctx, proxy); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": proxy.ID,
	})
}

// DeleteProxy handles DELETE /api/proxies/:id.
// Missing records and foreign records answer differently: 404 for no such id,
// 403 when the record exists but belongs to someone else.
func (s *Server) DeleteProxy(c *fiber.Ctx) error {
	ctx := c.Context()
	user, _ := s.currentUser(c)
	proxyID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	proxy, err := s.proxyRepo.GetByID(ctx, proxyID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if proxy == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Proxy", proxyID))
	}
	if proxy.UploaderID != user.ID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete nodes you uploaded"))
	}

	if err := s.proxyRepo.Delete(ctx, proxyID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ReportProxy handles POST /api/proxies/:id/report.
// Any authenticated user may vote, including the uploader; the unique
// (proxy, user) pair in storage turns a repeat vote into a 409.
func (s *Server) ReportProxy(c *fiber.Ctx) error {
	ctx := c.Context()
	user, _ := s.currentUser(c)
	proxyID, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		IsValid *bool `json:"is_valid"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.IsValid == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("is_valid (boolean) is required"))
	}

	proxy, err := s.proxyRepo.GetByID(ctx, proxyID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if proxy == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Proxy", proxyID))
	}

	report := &models.ValidityReport{
		ProxyID: proxyID,
		UserID:  user.ID,
		IsValid: *req.IsValid,
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "DUPLICATE_VOTE" {
			observability.VotesTotal.WithLabelValues("duplicate").Inc()
			return models.RespondWithError(c, fiber.StatusConflict, err)
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	observability.VotesTotal.WithLabelValues("accepted").Inc()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Thanks for your feedback!",
	})
}
