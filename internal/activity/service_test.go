package activity

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"propdesk-backend/internal/database"
	"propdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecorder(t *testing.T) *Recorder {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	return NewRecorder(db)
}

func TestRecorder_WriteAndList(t *testing.T) {
	r := newRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.Write(ctx, LogOptions{UserID: 1, UserName: "Sato", EntityType: "income", EntityID: 10,
		Action: models.ActivityCreate, Description: "created", After: map[string]any{"code": "P-1"}}))
	require.NoError(t, r.Write(ctx, LogOptions{UserID: 2, UserName: "Suzuki", EntityType: "income", EntityID: 10,
		Action: models.ActivityUpdate}))
	require.NoError(t, r.Write(ctx, LogOptions{UserID: 2, UserName: "Suzuki", EntityType: "resale", EntityID: 3,
		Action: models.ActivityDelete}))

	all, err := r.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.ActivityDelete, all[0].Action)
	assert.Equal(t, `{"code":"P-1"}`, all[2].AfterData)
	assert.Equal(t, "null", all[2].BeforeData)

	forDeal, err := r.List(ctx, Filter{EntityType: "income", EntityID: 10})
	require.NoError(t, err)
	assert.Len(t, forDeal, 2)

	byUser, err := r.List(ctx, Filter{UserID: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, "resale", byUser[0].EntityType)
}

func TestRecord_NilRecorder(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() { r.Record(context.Background(), LogOptions{}) })
}

func TestSnapshot(t *testing.T) {
	assert.Equal(t, "null", snapshot(nil))
	assert.Equal(t, "null", snapshot(make(chan int)))
	assert.Equal(t, `[1,2]`, snapshot([]int{1, 2}))
}

func TestListHandler(t *testing.T) {
	r := newRecorder(t)
	r.Record(context.Background(), LogOptions{UserID: 1, UserName: "Sato", EntityType: "user", EntityID: 1, Action: models.ActivityLogin})

	app := fiber.New()
	app.Get("/logs", ListHandler(r))

	resp, err := app.Test(httptest.NewRequest("GET", "/logs?entity_type=user", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var logs []LogResponse
	require.NoError(t, json.Unmarshal(body, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "Sato", logs[0].UserName)
	assert.Equal(t, models.ActivityLogin, logs[0].Action)

	resp, err = app.Test(httptest.NewRequest("GET", "/logs?user_id=-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
