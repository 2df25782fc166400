package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ezschedule/internal/engine"
	"ezschedule/internal/response"

	"github.com/gin-gonic/gin"
)

// engineError переводит ошибку движка в HTTP-статус и код ответа.
func engineError(err error) (int, response.ErrorResponse) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound, response.ErrorResponse{Code: "NOT_FOUND", Message: "Слот или запись не найдены"}
	case errors.Is(err, engine.ErrForbidden):
		return http.StatusForbidden, response.ErrorResponse{Code: "FORBIDDEN", Message: "Операция доступна только ведущему слота"}
	case errors.Is(err, engine.ErrAlreadyQueued):
		return http.StatusConflict, response.ErrorResponse{Code: "ALREADY_IN_QUEUE", Message: "Пользователь уже состоит в этой очереди"}
	case errors.Is(err, engine.ErrNotInQueue):
		return http.StatusConflict, response.ErrorResponse{Code: "NOT_IN_QUEUE", Message: "Активная запись в очереди не найдена"}
	case errors.Is(err, engine.ErrQueueEmpty):
		return http.StatusConflict, response.ErrorResponse{Code: "QUEUE_EMPTY", Message: "Очередь пуста"}
	case errors.Is(err, engine.ErrSlotClosed):
		return http.StatusConflict, response.ErrorResponse{Code: "SLOT_CLOSED", Message: "Очередь слота закрыта"}
	case errors.Is(err, engine.ErrAlreadyClosed):
		return http.StatusConflict, response.ErrorResponse{Code: "ALREADY_CLOSED", Message: "Слот уже был закрыт"}
	case errors.Is(err, engine.ErrNotNotified):
		return http.StatusConflict, response.ErrorResponse{Code: "NOT_NOTIFIED", Message: "Запись не была вызвана"}
	default:
		return http.StatusInternalServerError, response.ErrorResponse{Code: "DB_ERROR", Message: "Ошибка при изменении очереди", Details: err.Error()}
	}
}

func slotParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_SLOT_ID",
			Message: "Неверный идентификатор слота",
		})
		return 0, false
	}
	return uint(id), true
}

type JoinRequest struct {
	Tags []string `json:"tags"` // Необязательные теги записи
}

// JoinSlotHandler обрабатывает запрос на вступление в очередь слота
// @Summary		Вступление в очередь слота
// @Description	Ставит пользователя в хвост очереди консультации
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id		path	string		true	"ID слота"
// @Param			entry	body	JoinRequest	false	"Теги записи"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Успешное вступление с указанием позиции"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (INVALID_SLOT_ID)"
// @Failure		404	{object}	response.ErrorResponse		"Слот не найден (NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse		"Очередь закрыта или пользователь уже в ней (SLOT_CLOSED, ALREADY_IN_QUEUE)"
// @Router			/api/slots/{id}/join [post]
func (h *Handler) JoinSlotHandler(c *gin.Context) {
	slotID, ok := slotParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	// Тело запроса опционально: без него встаём в очередь без тегов.
	var req JoinRequest
	_ = c.ShouldBindJSON(&req)

	entry, err := h.Engine.Join(slotID, userID, req.Tags)
	if err != nil {
		status, resp := engineError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Вступление в очередь прошло успешно", "position": entry.Position})
}

// LeaveSlotHandler обрабатывает запрос на выход из очереди слота
// @Summary		Выход из очереди слота
// @Description	Убирает собственную запись пользователя из очереди, статус становится missed
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id	path	string	true	"ID слота"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Успешный выход из очереди"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (INVALID_SLOT_ID)"
// @Failure		404	{object}	response.ErrorResponse		"Слот не найден (NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse		"Пользователь не в очереди (NOT_IN_QUEUE)"
// @Router			/api/slots/{id}/leave [post]
func (h *Handler) LeaveSlotHandler(c *gin.Context) {
	slotID, ok := slotParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	if _, err := h.Engine.Leave(slotID, userID); err != nil {
		status, resp := engineError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Вы успешно вышли из очереди"})
}

// AdvanceSlotHandler вызывает следующего участника очереди
// @Summary		Вызов следующего участника
// @Description	Голова очереди получает статус notified и снимается с очереди. Доступно только ведущему
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id	path	string	true	"ID слота"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Вызванный участник"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (INVALID_SLOT_ID)"
// @Failure		403	{object}	response.ErrorResponse		"Вызывающий не ведущий (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse		"Слот не найден (NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse		"Очередь пуста или закрыта (QUEUE_EMPTY, SLOT_CLOSED)"
// @Router			/api/slots/{id}/advance [post]
func (h *Handler) AdvanceSlotHandler(c *gin.Context) {
	slotID, ok := slotParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	head, err := h.Engine.Advance(slotID, userID)
	if err != nil {
		status, resp := engineError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Следующий участник вызван",
		"entry_id": head.ID,
		"user_id":  head.VisitorID,
	})
}

// CloseSlotHandler закрывает очередь слота
// @Summary		Закрытие очереди слота
// @Description	Ставит флаг закрытия, новые вступления и вызовы невозможны. Доступно только ведущему
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id	path	string	true	"ID слота"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Очередь закрыта"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (INVALID_SLOT_ID)"
// @Failure		403	{object}	response.ErrorResponse		"Вызывающий не ведущий (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse		"Слот не найден (NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse		"Слот уже закрыт (ALREADY_CLOSED)"
// @Router			/api/slots/{id}/close [post]
func (h *Handler) CloseSlotHandler(c *gin.Context) {
	slotID, ok := slotParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	if err := h.Engine.Close(slotID, userID); err != nil {
		status, resp := engineError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Очередь слота закрыта"})
}

// MarkServedHandler помечает вызванную запись обслуженной
// @Summary		Отметка об обслуживании
// @Description	Переводит ранее вызванную запись в статус served. Доступно только ведущему
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			id			path	string	true	"ID слота"
// @Param			entry_id	path	string	true	"ID записи"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Запись обслужена"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (INVALID_SLOT_ID, INVALID_ENTRY_ID)"
// @Failure		403	{object}	response.ErrorResponse		"Вызывающий не ведущий (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse		"Слот или запись не найдены (NOT_FOUND)"
// @Failure		409	{object}	response.ErrorResponse		"Запись не была вызвана (NOT_NOTIFIED)"
// @Router			/api/slots/{id}/entries/{entry_id}/served [post]
func (h *Handler) MarkServedHandler(c *gin.Context) {
	slotID, ok := slotParam(c)
	if !ok {
		return
	}
	entryID, err := strconv.Atoi(c.Param("entry_id"))
	if err != nil || entryID <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ENTRY_ID",
			Message: "Неверный идентификатор записи",
		})
		return
	}
	userID := c.GetUint("userID")

	if _, err := h.Engine.MarkServed(slotID, uint(entryID), userID); err != nil {
		status, resp := engineError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Запись отмечена обслуженной"})
}
