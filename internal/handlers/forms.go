package handlers

import (
	"net/http"
	"time"

	"ezschedule/internal/models"
	"ezschedule/internal/response"

	"github.com/gin-gonic/gin"
)

type SubmitFormRequest struct {
	Topic   string `json:"topic" binding:"required"`
	Details string `json:"details"`
}

type FormItem struct {
	FormID    uint      `json:"form_id"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Topic     string    `json:"topic"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitFormHandler принимает анкету перед консультацией
// @Summary		Отправка анкеты
// @Description	Участник очереди заполняет тему и детали предстоящей консультации
// @Tags			forms
// @Accept			json
// @Produce		json
// @Param			id		path	string				true	"ID слота"
// @Param			form	body	SubmitFormRequest	true	"Анкета"
// @Security		BearerAuth
// @Success		201	{object}	response.SuccessResponse	"Анкета сохранена"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR, INVALID_SLOT_ID)"
// @Failure		409	{object}	response.ErrorResponse		"Пользователь не в очереди (NOT_IN_QUEUE)"
// @Router			/api/slots/{id}/form [post]
func (h *Handler) SubmitFormHandler(c *gin.Context) {
	slotID, ok := slotParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	var req SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	// Анкету подаёт только участник, стоящий в очереди слота.
	var count int64
	if err := h.DB.Model(&models.Entry{}).
		Where("slot_id = ? AND visitor_id = ? AND status = ?", slotID, userID, models.EntryStatusWaiting).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка проверки очереди",
			Details: err.Error(),
		})
		return
	}
	if count == 0 {
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "NOT_IN_QUEUE",
			Message: "Анкету может отправить только участник очереди",
		})
		return
	}

	form := models.ConsultForm{
		SlotID:  slotID,
		UserID:  userID,
		Topic:   req.Topic,
		Details: req.Details,
	}
	if err := h.DB.Create(&form).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при сохранении анкеты",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.SuccessResponse{Message: "Анкета сохранена"})
}

// ListFormsHandler возвращает анкеты слота
// @Summary		Анкеты слота
// @Description	Возвращает отправленные анкеты. Доступно только ведущему слота
// @Tags			forms
// @Accept			json
// @Produce		json
// @Param			id	path	string	true	"ID слота"
// @Security		BearerAuth
// @Success		200	{array}		FormItem				"Анкеты"
// @Failure		403	{object}	response.ErrorResponse	"Вызывающий не ведущий (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse	"Слот не найден (NOT_FOUND)"
// @Router			/api/slots/{id}/forms [get]
func (h *Handler) ListFormsHandler(c *gin.Context) {
	slotID, ok := slotParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	var slot models.Slot
	if err := h.DB.First(&slot, slotID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NOT_FOUND",
			Message: "Слот не найден",
		})
		return
	}
	if slot.HostID != userID {
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "Анкеты видит только ведущий слота",
		})
		return
	}

	var forms []models.ConsultForm
	if err := h.DB.
		Preload("User").
		Where("slot_id = ?", slotID).
		Order("created_at ASC").
		Find(&forms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки анкет",
			Details: err.Error(),
		})
		return
	}

	items := make([]FormItem, 0, len(forms))
	for _, form := range forms {
		items = append(items, FormItem{
			FormID:    form.ID,
			UserID:    form.UserID,
			Name:      form.User.Name,
			Surname:   form.User.Surname,
			Topic:     form.Topic,
			Details:   form.Details,
			CreatedAt: form.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, items)
}
