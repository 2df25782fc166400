package handlers

import (
	"net/http"
	"time"

	"ezschedule/internal/engine"
	"ezschedule/internal/models"
	"ezschedule/internal/response"

	"github.com/gin-gonic/gin"
)

// UserSlotItem — запись пользователя в очереди с данными слота.
type UserSlotItem struct {
	SlotID     uint   `json:"slot_id"`
	GroupID    uint   `json:"group_id"`
	Title      string `json:"title"`
	StartsAt   string `json:"starts_at"`
	EndsAt     string `json:"ends_at"`
	SlotStatus string `json:"slot_status"`
	Position   int    `json:"position"`
}

// GetUserSlotsHandler godoc
// @Summary		Получение списка своих очередей
// @Description	Возвращает слоты, в очередях которых пользователь сейчас стоит
// @Tags			profile
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		UserSlotItem			"Очереди пользователя"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/profile/slots [get]
func (h *Handler) GetUserSlotsHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	var entries []models.Entry
	if err := h.DB.
		Where("visitor_id = ? AND status = ?", userID, models.EntryStatusWaiting).
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки записей пользователя",
			Details: err.Error(),
		})
		return
	}

	if len(entries) == 0 {
		c.JSON(http.StatusOK, []UserSlotItem{})
		return
	}

	var slotIDs []uint
	for _, entry := range entries {
		slotIDs = append(slotIDs, entry.SlotID)
	}

	var slots []models.Slot
	if err := h.DB.Where("id IN ?", slotIDs).Find(&slots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки слотов",
			Details: err.Error(),
		})
		return
	}

	slotMap := make(map[uint]models.Slot)
	for _, slot := range slots {
		slotMap[slot.ID] = slot
	}

	now := time.Now()
	result := make([]UserSlotItem, 0, len(entries))
	for _, entry := range entries {
		slot, exists := slotMap[entry.SlotID]
		if !exists {
			continue
		}
		result = append(result, UserSlotItem{
			SlotID:     slot.ID,
			GroupID:    slot.GroupID,
			Title:      slot.Title,
			StartsAt:   slot.StartsAt.Format(time.RFC3339),
			EndsAt:     slot.EndsAt.Format(time.RFC3339),
			SlotStatus: string(engine.ResolveStatus(slot, now)),
			Position:   entry.Position,
		})
	}

	c.JSON(http.StatusOK, result)
}
