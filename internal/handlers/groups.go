package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ezschedule/internal/models"
	"ezschedule/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var ctx = context.Background()

type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type JoinGroupRequest struct {
	Code string `json:"code" binding:"required"`
}

type GroupItem struct {
	GroupID uint   `json:"group_id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	HostID  uint   `json:"host_id"`
	IsHost  bool   `json:"is_host"`
}

func userGroupsCacheKey(userID uint) string {
	return fmt.Sprintf("user_groups_%d", userID)
}

// CreateGroupHandler создает группу, вызывающий становится её владельцем
// @Summary		Создание группы
// @Description	Создает группу с автоматически сгенерированным кодом присоединения
// @Tags			groups
// @Accept			json
// @Produce		json
// @Param			group	body	CreateGroupRequest	true	"Данные группы"
// @Security		BearerAuth
// @Success		201	{object}	GroupItem				"Созданная группа"
// @Failure		400	{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/groups [post]
func (h *Handler) CreateGroupHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	group := models.Group{
		Name:   req.Name,
		Code:   strings.ToUpper(uuid.NewString()[:8]),
		HostID: userID,
	}
	if err := h.DB.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании группы",
			Details: err.Error(),
		})
		return
	}

	// Сбрасываем кэш списка групп владельца.
	h.Redis.Del(ctx, userGroupsCacheKey(userID))

	c.JSON(http.StatusCreated, GroupItem{
		GroupID: group.ID,
		Name:    group.Name,
		Code:    group.Code,
		HostID:  group.HostID,
		IsHost:  true,
	})
}

// JoinGroupHandler присоединяет пользователя к группе по коду
// @Summary		Присоединение к группе
// @Description	Присоединяет пользователя к группе по коду приглашения
// @Tags			groups
// @Accept			json
// @Produce		json
// @Param			code	body	JoinGroupRequest	true	"Код группы"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Успешное присоединение"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		404	{object}	response.ErrorResponse		"Группа не найдена (GROUP_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/groups/join [post]
func (h *Handler) JoinGroupHandler(c *gin.Context) {
	userID := c.GetUint("userID")

	var req JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var group models.Group
	if err := h.DB.Where("code = ?", strings.ToUpper(req.Code)).First(&group).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "GROUP_NOT_FOUND",
			Message: "Группа с таким кодом не найдена",
		})
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки пользователя",
			Details: err.Error(),
		})
		return
	}

	if err := h.DB.Model(&group).Association("Members").Append(&user); err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при присоединении к группе",
			Details: err.Error(),
		})
		return
	}

	h.Redis.Del(ctx, userGroupsCacheKey(userID))

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Вы присоединились к группе"})
}

// ListGroupsHandler возвращает группы пользователя
// @Summary		Список групп пользователя
// @Description	Возвращает группы, где пользователь владелец или участник, кэширует результат в Redis
// @Tags			groups
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		GroupItem				"Группы пользователя"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/groups [get]
func (h *Handler) ListGroupsHandler(c *gin.Context) {
	userID := c.GetUint("userID")
	cacheKey := userGroupsCacheKey(userID)

	// Проверка кэша
	cached, err := h.Redis.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var items []GroupItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			c.JSON(http.StatusOK, items)
			return
		}
	}

	var owned []models.Group
	if err := h.DB.Where("host_id = ?", userID).Find(&owned).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки групп",
			Details: err.Error(),
		})
		return
	}

	var member []models.Group
	if err := h.DB.
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Find(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки групп",
			Details: err.Error(),
		})
		return
	}

	items := make([]GroupItem, 0, len(owned)+len(member))
	seen := make(map[uint]bool)
	for _, g := range owned {
		items = append(items, GroupItem{GroupID: g.ID, Name: g.Name, Code: g.Code, HostID: g.HostID, IsHost: true})
		seen[g.ID] = true
	}
	for _, g := range member {
		if seen[g.ID] {
			continue
		}
		items = append(items, GroupItem{GroupID: g.ID, Name: g.Name, Code: g.Code, HostID: g.HostID})
	}

	// Кэширование результата
	if payload, err := json.Marshal(items); err == nil {
		h.Redis.Set(ctx, cacheKey, string(payload), time.Minute*5)
	}

	c.JSON(http.StatusOK, items)
}
