package activity

import (
	"propdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LogResponse struct {
	ID          uint                  `json:"id"`
	CreatedAt   string                `json:"created_at"`
	UserID      uint                  `json:"user_id"`
	UserName    string                `json:"user_name"`
	EntityType  string                `json:"entity_type"`
	EntityID    uint                  `json:"entity_id"`
	Action      models.ActivityAction `json:"action"`
	Description string                `json:"description"`
}

// GET /api/activity-logs?entity_type=income&entity_id=1&user_id=2&limit=50
func ListHandler(r *Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := Filter{
			EntityType: c.Query("entity_type"),
			EntityID:   uint(c.QueryInt("entity_id")),
			UserID:     uint(c.QueryInt("user_id")),
			Limit:      c.QueryInt("limit"),
		}
		if c.QueryInt("entity_id") < 0 || c.QueryInt("user_id") < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "entity_id and user_id must be positive")
		}

		logs, err := r.List(c.UserContext(), f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Activity logs could not be listed")
		}

		resp := make([]LogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, LogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
			})
		}
		return c.JSON(resp)
	}
}
