package filestore

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
)

// DownloadHandler serves a file of the local store.
// GET /api/files/:folder/:name
func DownloadHandler(l *Local) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path, err := l.Path(c.Params("folder"), c.Params("name"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "File not found")
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fiber.NewError(fiber.StatusNotFound, "File not found")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "File could not be read")
		}
		return c.Download(path)
	}
}
