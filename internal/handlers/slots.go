package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ezschedule/internal/engine"
	"ezschedule/internal/models"
	"ezschedule/internal/response"

	"github.com/gin-gonic/gin"
)

type CreateSlotRequest struct {
	Title    string    `json:"title" binding:"required"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required"`
}

type SlotItem struct {
	SlotID   uint      `json:"slot_id"`
	GroupID  uint      `json:"group_id"`
	HostID   uint      `json:"host_id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	IsClosed bool      `json:"is_closed"`
	Status   string    `json:"status"`
}

type EntryItem struct {
	EntryID   uint      `json:"entry_id"`
	VisitorID uint      `json:"visitor_id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Position  int       `json:"position"`
	Status    string    `json:"status"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotStateResponse содержит слот, производный статус и очередь ожидающих.
type SlotStateResponse struct {
	SlotItem
	Entries []EntryItem `json:"entries"`
}

// CreateSlotHandler создает слот консультации в группе
// @Summary		Создание слота
// @Description	Создает слот консультации. Доступно только владельцу группы
// @Tags			slots
// @Accept			json
// @Produce		json
// @Param			id		path	string				true	"ID группы"
// @Param			slot	body	CreateSlotRequest	true	"Данные слота"
// @Security		BearerAuth
// @Success		201	{object}	SlotItem				"Созданный слот"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_WINDOW)"
// @Failure		403	{object}	response.ErrorResponse	"Вызывающий не владелец группы (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse	"Группа не найдена (GROUP_NOT_FOUND)"
// @Router			/api/groups/{id}/slots [post]
func (h *Handler) CreateSlotHandler(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil || groupID <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_GROUP_ID",
			Message: "Неверный идентификатор группы",
		})
		return
	}
	userID := c.GetUint("userID")

	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var group models.Group
	if err := h.DB.First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "GROUP_NOT_FOUND",
			Message: "Группа не найдена",
		})
		return
	}
	if group.HostID != userID {
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "Создавать слоты может только владелец группы",
		})
		return
	}

	slot, err := models.NewSlot(group.ID, userID, req.Title, req.StartsAt, req.EndsAt)
	if errors.Is(err, models.ErrInvalidWindow) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_WINDOW",
			Message: "Начало слота должно быть раньше окончания",
		})
		return
	}

	if err := h.DB.Create(&slot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании слота",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, h.slotItem(slot))
}

// ListGroupSlotsHandler возвращает слоты группы
// @Summary		Список слотов группы
// @Description	Возвращает слоты группы с производным статусом каждого
// @Tags			slots
// @Accept			json
// @Produce		json
// @Param			id	path	string	true	"ID группы"
// @Security		BearerAuth
// @Success		200	{array}		SlotItem				"Слоты группы"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_GROUP_ID)"
// @Failure		404	{object}	response.ErrorResponse	"Группа не найдена (GROUP_NOT_FOUND)"
// @Router			/api/groups/{id}/slots [get]
func (h *Handler) ListGroupSlotsHandler(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("id"))
	if err != nil || groupID <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_GROUP_ID",
			Message: "Неверный идентификатор группы",
		})
		return
	}

	var group models.Group
	if err := h.DB.First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "GROUP_NOT_FOUND",
			Message: "Группа не найдена",
		})
		return
	}

	var slots []models.Slot
	if err := h.DB.
		Where("group_id = ?", group.ID).
		Order("starts_at ASC").
		Find(&slots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки слотов",
			Details: err.Error(),
		})
		return
	}

	items := make([]SlotItem, 0, len(slots))
	for _, slot := range slots {
		items = append(items, h.slotItem(slot))
	}
	c.JSON(http.StatusOK, items)
}

// GetSlotHandler возвращает состояние слота и его очередь
// @Summary		Состояние слота
// @Description	Возвращает слот, производный статус и очередь ожидающих в порядке вступления
// @Tags			slots
// @Accept			json
// @Produce		json
// @Param			id	path	string	true	"ID слота"
// @Security		BearerAuth
// @Success		200	{object}	SlotStateResponse		"Состояние слота"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (INVALID_SLOT_ID)"
// @Failure		404	{object}	response.ErrorResponse	"Слот не найден (NOT_FOUND)"
// @Router			/api/slots/{id} [get]
func (h *Handler) GetSlotHandler(c *gin.Context) {
	slotID, ok := slotParam(c)
	if !ok {
		return
	}

	slot, status, entries, err := h.Engine.SlotState(slotID)
	if err != nil {
		respStatus, resp := engineError(err)
		c.JSON(respStatus, resp)
		return
	}

	items := make([]EntryItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, EntryItem{
			EntryID:   entry.ID,
			VisitorID: entry.VisitorID,
			Name:      entry.Visitor.Name,
			Surname:   entry.Visitor.Surname,
			Position:  entry.Position,
			Status:    string(entry.Status),
			Tags:      entry.TagList(),
			CreatedAt: entry.CreatedAt,
		})
	}

	item := h.slotItem(slot)
	item.Status = string(status)
	c.JSON(http.StatusOK, SlotStateResponse{SlotItem: item, Entries: items})
}

func (h *Handler) slotItem(slot models.Slot) SlotItem {
	return SlotItem{
		SlotID:   slot.ID,
		GroupID:  slot.GroupID,
		HostID:   slot.HostID,
		Title:    slot.Title,
		StartsAt: slot.StartsAt,
		EndsAt:   slot.EndsAt,
		IsClosed: slot.IsClosed,
		Status:   string(engine.ResolveStatus(slot, time.Now())),
	}
}
