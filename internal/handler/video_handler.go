package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lanprime/internal/models"
	"lanprime/internal/repository"
)

type VideoHandler struct {
	repo *repository.VideoRepository
}

func NewVideoHandler(repo *repository.VideoRepository) *VideoHandler {
	return &VideoHandler{repo: repo}
}

type VideoRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	URL         string `json:"url" binding:"required,url"`
	CategoryID  *uint  `json:"category_id"`
}

func (h *VideoHandler) List(c *gin.Context) {
	if catParam := c.Query("category_id"); catParam != "" {
		catID, err := strconv.ParseUint(catParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid category_id"})
			return
		}
		videos, err := h.repo.ListByCategory(uint(catID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch videos"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": videos})
		return
	}
	videos, err := h.repo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch videos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": videos})
}

func (h *VideoHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid video id"})
		return
	}
	v, err := h.repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to fetch video"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": v})
}

func (h *VideoHandler) Create(c *gin.Context) {
	var req VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	v := &models.Video{Title: req.Title, Description: req.Description, URL: req.URL, CategoryID: req.CategoryID}
	if err := h.repo.Create(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to create video"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": v})
}

func (h *VideoHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid video id"})
		return
	}
	var req VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	v, err := h.repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update video"})
		return
	}
	v.Title = req.Title
	v.Description = req.Description
	v.URL = req.URL
	v.CategoryID = req.CategoryID
	if err := h.repo.Update(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to update video"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": v})
}

func (h *VideoHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid video id"})
		return
	}
	if err := h.repo.Delete(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to delete video"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"message": "video deleted"}})
}
