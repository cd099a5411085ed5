package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/divanco-studio/backend/database"
	"github.com/divanco-studio/backend/errs"
	"github.com/divanco-studio/backend/models"
)

type categoryHandler struct {
	responder    Responder
	logger       zerolog.Logger
	categoryRepo *database.CategoryRepo
}

func newCategoryHandler(categoryRepo *database.CategoryRepo) categoryHandler {
	logger := log.With().Str("handlerName", "categoryHandler").Logger()

	return categoryHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		categoryRepo: categoryRepo,
	}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       *int   `json:"order"`
	IsActive    *bool  `json:"isActive"`
}

// getCategories lists active categories with their subcategories.
func (h categoryHandler) getCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.categoryRepo.FindAll()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find categories", "categories", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, categories)
	}
}

func (h categoryHandler) createCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}

		category := models.Category{
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			IsActive:    req.IsActive == nil || *req.IsActive,
		}
		if req.Order != nil {
			category.Order = *req.Order
		}

		if err := h.categoryRepo.Add(&category); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create category", "category", err))
			return
		}

		h.responder.WriteData(w, http.StatusCreated, category)
	}
}

func (h categoryHandler) updateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := pathUUID(r, "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, err := h.categoryRepo.FindByID(categoryID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find category", "category", err))
			return
		}
		if category == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("category not found"))
			return
		}

		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		if name := strings.TrimSpace(req.Name); name != "" {
			category.Name = name
		}
		if req.Description != "" {
			category.Description = req.Description
		}
		if req.Order != nil {
			category.Order = *req.Order
		}
		if req.IsActive != nil {
			category.IsActive = *req.IsActive
		}

		if err := h.categoryRepo.Update(category); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update category", "category", err))
			return
		}

		h.responder.WriteData(w, http.StatusOK, category)
	}
}

func (h categoryHandler) deleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := pathUUID(r, "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, err := h.categoryRepo.FindByID(categoryID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find category", "category", err))
			return
		}
		if category == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("category not found"))
			return
		}

		if err := h.categoryRepo.Delete(categoryID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete category", "category", err))
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "category deleted successfully")
	}
}

type subcategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       *int   `json:"order"`
	IsActive    *bool  `json:"isActive"`
}

func (h categoryHandler) createSubcategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := pathUUID(r, "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		category, err := h.categoryRepo.FindByID(categoryID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find category", "category", err))
			return
		}
		if category == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("category not found"))
			return
		}

		var req subcategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("name"))
			return
		}

		sub := models.Subcategory{
			CategoryID:  categoryID,
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			IsActive:    req.IsActive == nil || *req.IsActive,
		}
		if req.Order != nil {
			sub.Order = *req.Order
		}

		if err := h.categoryRepo.AddSubcategory(&sub); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create subcategory", "subcategory", err))
			return
		}

		h.responder.WriteData(w, http.StatusCreated, sub)
	}
}

func (h categoryHandler) updateSubcategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subID, err := pathUUID(r, "subcategoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		sub, err := h.categoryRepo.FindSubcategoryByID(subID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find subcategory", "subcategory", err))
			return
		}
		if sub == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("subcategory not found"))
			return
		}

		var req subcategoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		if name := strings.TrimSpace(req.Name); name != "" {
			sub.Name = name
		}
		if req.Description != "" {
			sub.Description = req.Description
		}
		if req.Order != nil {
			sub.Order = *req.Order
		}
		if req.IsActive != nil {
			sub.IsActive = *req.IsActive
		}

		if err := h.categoryRepo.UpdateSubcategory(sub); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update subcategory", "subcategory", err))
			return
		}

		h.responder.WriteData(w, http.StatusOK, sub)
	}
}

func (h categoryHandler) deleteSubcategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subID, err := pathUUID(r, "subcategoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		sub, err := h.categoryRepo.FindSubcategoryByID(subID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find subcategory", "subcategory", err))
			return
		}
		if sub == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("subcategory not found"))
			return
		}

		if err := h.categoryRepo.DeleteSubcategory(subID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete subcategory", "subcategory", err))
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "subcategory deleted successfully")
	}
}
