package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"ezschedule/internal/engine"
	"ezschedule/internal/events"
	"ezschedule/internal/handlers"
	"ezschedule/internal/models"
	"ezschedule/internal/notify"
	"ezschedule/internal/storage"
	"ezschedule/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// AuthMiddlewareTest подставляет userID из заголовка вместо разбора JWT.
func AuthMiddlewareTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.Request.Header.Get("X-Test-UserID")
		if userIDStr == "" {
			c.Set("userID", uint(1))
		} else {
			id, err := strconv.Atoi(userIDStr)
			if err != nil {
				c.Set("userID", uint(1))
			} else {
				c.Set("userID", uint(id))
			}
		}
		c.Next()
	}
}

func setupTestServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	if os.Getenv("TEST_DB_HOST") == "" {
		_ = godotenv.Load("../../.env")
	}
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST не задан, интеграционный тест пропущен")
	}

	db, err := storage.ConnectTestingDatabase()
	require.NoError(t, err, "Ошибка подключения к тестовой базе")

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Group{}, &models.Slot{}, &models.Entry{}, &models.ConsultForm{}),
		"Ошибка при миграции")
	db.Exec("TRUNCATE TABLE users, groups, slots, entries, consult_forms, group_members RESTART IDENTITY CASCADE;")

	hub := ws.NewHub()
	go hub.Run()

	dispatcher := events.NewDispatcher(db, hub, notify.LogSender{})
	go dispatcher.Run()

	eng := engine.New(db, dispatcher.Events())
	h := handlers.New(db, nil, eng)

	gin.SetMode(gin.TestMode)
	r := gin.Default()

	slots := r.Group("/api/slots", AuthMiddlewareTest())
	{
		slots.GET("/:id", h.GetSlotHandler)
		slots.POST("/:id/join", h.JoinSlotHandler)
		slots.POST("/:id/leave", h.LeaveSlotHandler)
		slots.POST("/:id/advance", h.AdvanceSlotHandler)
		slots.POST("/:id/close", h.CloseSlotHandler)
		slots.POST("/:id/form", h.SubmitFormHandler)
		slots.GET("/:id/forms", h.ListFormsHandler)
	}
	r.GET("/api/slots/:id/ws", ws.SlotWebSocketHandler(hub))
	r.GET("/profile/slots", AuthMiddlewareTest(), h.GetUserSlotsHandler)

	return httptest.NewServer(r), db
}

func doAs(t *testing.T, method, url string, userID uint, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-UserID", fmt.Sprintf("%d", userID))
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "Ошибка HTTP запроса")
	return res
}

func TestSlotQueueFlow(t *testing.T) {
	ts, db := setupTestServer(t)
	defer ts.Close()

	// Тестовые пользователи и слот с открытым окном.
	host := models.User{Name: "Мария", Surname: "Петрова", Email: "host@example.com", PasswordHash: "hashed"}
	user1 := models.User{Name: "Иван", Surname: "Иванов", Email: "ivan@example.com", PasswordHash: "hashed"}
	user2 := models.User{Name: "Петр", Surname: "Петров", Email: "petr@example.com", PasswordHash: "hashed"}
	for _, u := range []*models.User{&host, &user1, &user2} {
		require.NoError(t, db.Create(u).Error, "Ошибка создания тестового пользователя")
	}

	group := models.Group{Name: "Группа 101", Code: "CODE0101", HostID: host.ID}
	require.NoError(t, db.Create(&group).Error)

	now := time.Now()
	slot, err := models.NewSlot(group.ID, host.ID, "Сдача практики", now.Add(-time.Minute), now.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, db.Create(&slot).Error, "Ошибка создания тестового слота")

	base := ts.URL + "/api/slots/" + strconv.Itoa(int(slot.ID))

	// Вступление первого участника.
	res := doAs(t, "POST", base+"/join", user1.ID, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Пользователь 1 не смог встать в очередь")
	res.Body.Close()

	// Повторное вступление отклоняется.
	res = doAs(t, "POST", base+"/join", user1.ID, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode, "Повторное вступление должно давать 409")
	res.Body.Close()

	// Второй участник с тегами.
	res = doAs(t, "POST", base+"/join", user2.ID, handlers.JoinRequest{Tags: []string{"лаба4"}})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Пользователь 2 не смог встать в очередь")
	res.Body.Close()

	// Участник очереди отправляет анкету.
	res = doAs(t, "POST", base+"/form", user1.ID, handlers.SubmitFormRequest{Topic: "Лабораторная 4", Details: "Вопрос по заданию 2"})
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Анкета участника очереди должна приниматься")
	res.Body.Close()

	// Анкеты видит только ведущий.
	res = doAs(t, "GET", base+"/forms", user1.ID, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res.Body.Close()
	res = doAs(t, "GET", base+"/forms", host.ID, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	// Состояние слота: активен, два участника в порядке вступления.
	res = doAs(t, "GET", base, user1.ID, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, "Ошибка получения состояния слота")
	var state struct {
		Status  string `json:"status"`
		Entries []struct {
			VisitorID uint   `json:"visitor_id"`
			Name      string `json:"name"`
			Position  int    `json:"position"`
		} `json:"entries"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&state))
	res.Body.Close()
	assert.Equal(t, "active", state.Status)
	require.Len(t, state.Entries, 2, "Количество участников в очереди неверное")
	assert.Equal(t, user1.ID, state.Entries[0].VisitorID, "Голова очереди должна быть первым вставшим")
	assert.Equal(t, "Иван", state.Entries[0].Name, "Данные участника должны подгружаться вместе с записью")
	assert.Equal(t, 1, state.Entries[0].Position)
	assert.Equal(t, user2.ID, state.Entries[1].VisitorID)

	// Подписываемся на WS-обновления слота.
	wsURL := "ws" + ts.URL[4:] + "/api/slots/" + strconv.Itoa(int(slot.ID)) + "/ws"
	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "Ошибка подключения к WS")
	defer wsConn.Close()

	// Вызов следующего не ведущим запрещён.
	res = doAs(t, "POST", base+"/advance", user2.ID, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode, "Вызов не ведущим должен давать 403")
	res.Body.Close()

	// Ведущий вызывает голову очереди.
	res = doAs(t, "POST", base+"/advance", host.ID, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ведущий не смог вызвать участника")
	var advanced struct {
		UserID uint `json:"user_id"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&advanced))
	res.Body.Close()
	assert.Equal(t, user1.ID, advanced.UserID, "Вызываться должна голова очереди")

	// WS-сообщение о вызове.
	wsConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, wsMessage, err := wsConn.ReadMessage()
	require.NoError(t, err, "Ошибка чтения WS сообщения")
	var wsMsg map[string]interface{}
	require.NoError(t, json.Unmarshal(wsMessage, &wsMsg), "Ошибка разбора WS сообщения")
	assert.Equal(t, "entry_notified", wsMsg["event_type"], "Неверный тип WS сообщения после вызова")

	// Закрытие не ведущим запрещено.
	res = doAs(t, "POST", base+"/close", user2.ID, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res.Body.Close()

	// Ведущий закрывает очередь.
	res = doAs(t, "POST", base+"/close", host.ID, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ведущий не смог закрыть очередь")
	res.Body.Close()

	// WS-сообщение о закрытии.
	wsConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msgClosed, err := wsConn.ReadMessage()
	require.NoError(t, err, "Ошибка чтения WS сообщения (slot_closed)")
	var closedMsg map[string]interface{}
	require.NoError(t, json.Unmarshal(msgClosed, &closedMsg))
	assert.Equal(t, "slot_closed", closedMsg["event_type"], "Неверный тип WS сообщения после закрытия")

	// Повторное закрытие — конфликт, а не тихий успех.
	res = doAs(t, "POST", base+"/close", host.ID, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode, "Повторное закрытие должно давать 409")
	res.Body.Close()

	// Вступление в закрытый слот отклоняется.
	res = doAs(t, "POST", base+"/join", user1.ID, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode, "Вступление в закрытый слот должно давать 409")
	res.Body.Close()

	// Выход разрешён и из закрытого слота.
	res = doAs(t, "POST", base+"/leave", user2.ID, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Выход из закрытого слота должен быть разрешён")
	res.Body.Close()
}

// Список своих очередей всегда сериализуется в JSON-массив, а не в null:
// и когда записей нет вовсе, и когда все записи отфильтрованы из-за
// ссылок на уже удалённые слоты.
func TestUserSlotsEmptyArray(t *testing.T) {
	ts, db := setupTestServer(t)
	defer ts.Close()

	user := models.User{Name: "Иван", Surname: "Иванов", Email: "ivan@example.com", PasswordHash: "hashed"}
	require.NoError(t, db.Create(&user).Error)

	readBody := func(res *http.Response) string {
		t.Helper()
		require.Equal(t, http.StatusOK, res.StatusCode, "Ошибка получения списка очередей")
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		res.Body.Close()
		return string(body)
	}

	// Записей нет.
	res := doAs(t, "GET", ts.URL+"/profile/slots", user.ID, nil)
	assert.JSONEq(t, "[]", readBody(res), "Без записей должен вернуться пустой массив")

	// Запись ссылается на удалённый слот и отфильтровывается.
	entry := models.Entry{SlotID: 9999, VisitorID: user.ID, Status: models.EntryStatusWaiting, Position: 1}
	require.NoError(t, db.Create(&entry).Error)

	res = doAs(t, "GET", ts.URL+"/profile/slots", user.ID, nil)
	assert.JSONEq(t, "[]", readBody(res), "После фильтрации осиротевших записей должен вернуться пустой массив")
}
