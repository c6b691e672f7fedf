package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-course-backend/logger"
	"github.com/vnkhanh/e-course-backend/repos"
	"github.com/vnkhanh/e-course-backend/response"
	"github.com/vnkhanh/e-course-backend/services"
)

type CategoryHandler struct {
	categories  services.CategoryService
	communities services.CommunityService
	log         *logger.Logger
}

func NewCategoryHandler(categories services.CategoryService, communities services.CommunityService, log *logger.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, communities: communities, log: log}
}

// POST /api/admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := bindJSON(c, h.log, &input); err != nil {
		response.Error(c, h.log, err)
		return
	}
	category, err := h.categories.Create(c.Request.Context(), input.Name)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Created(c, gin.H{"category": category})
}

// GET /api/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	rows, err := h.categories.List(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"categories": rows})
}

// GET /api/communities
func (h *CategoryHandler) ListCommunities(c *gin.Context) {
	rows, err := h.communities.List(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"communities": rows})
}

// GET /api/communities/search?q=&min_members=&max_members=&sort_by=&order=&limit=&offset=
func (h *CategoryHandler) SearchCommunities(c *gin.Context) {
	filter := repos.CommunityFilter{
		Query:  c.Query("q"),
		SortBy: c.Query("sort_by"),
		Desc:   c.Query("order") == "desc",
	}
	var err error
	if filter.MinMembers, err = queryInt64(c, "min_members"); err != nil {
		response.Error(c, h.log, err)
		return
	}
	if filter.MaxMembers, err = queryInt64(c, "max_members"); err != nil {
		response.Error(c, h.log, err)
		return
	}
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		response.Error(c, h.log, err)
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		response.Error(c, h.log, err)
		return
	}

	rows, err := h.communities.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"communities": rows})
}
