package deal

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"propdesk-backend/internal/activity"
	"propdesk-backend/internal/auth"
	"propdesk-backend/internal/filestore"
	"propdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxListLimit = 500

// Handlers serves the deal API. One set of routes is registered per variant.
type Handlers struct {
	Service  *Service
	Files    filestore.Store
	Activity *activity.Recorder
	Versions *Versions
}

type ExpenseResponse struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
}

type DealResponse struct {
	ID              uint               `json:"id"`
	Variant         models.DealVariant `json:"variant"`
	Code            string             `json:"code"`
	PropertyAddress string             `json:"property_address"`

	PropertyPrice     *int64 `json:"property_price"`
	ExpectedRent      *int64 `json:"expected_rent,omitempty"`
	AgentRent         *int64 `json:"agent_rent,omitempty"`
	ExpectedSalePrice *int64 `json:"expected_sale_price,omitempty"`

	AcquisitionCost *int64 `json:"acquisition_cost"`
	ProjectTotal    *int64 `json:"project_total"`
	ExpectedYieldBp *int64 `json:"expected_yield_bp,omitempty"`
	SurfaceYieldBp  *int64 `json:"surface_yield_bp,omitempty"`
	ExpectedProfit  *int64 `json:"expected_profit,omitempty"`

	Status    models.DealStatus `json:"status"`
	FolderID  string            `json:"folder_id,omitempty"`
	Note      string            `json:"note"`
	CreatedBy *uint             `json:"created_by"`
	Expenses  []ExpenseResponse `json:"expenses"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

func toResponse(d *models.Deal) DealResponse {
	expenses := make([]ExpenseResponse, 0, len(d.Expenses))
	for _, e := range d.Expenses {
		expenses = append(expenses, ExpenseResponse{Position: e.Position, Name: e.Name, Price: e.Price})
	}
	return DealResponse{
		ID:                d.ID,
		Variant:           d.Variant,
		Code:              d.Code,
		PropertyAddress:   d.PropertyAddress,
		PropertyPrice:     d.PropertyPrice,
		ExpectedRent:      d.ExpectedRent,
		AgentRent:         d.AgentRent,
		ExpectedSalePrice: d.ExpectedSalePrice,
		AcquisitionCost:   d.AcquisitionCost,
		ProjectTotal:      d.ProjectTotal,
		ExpectedYieldBp:   d.ExpectedYieldBp,
		SurfaceYieldBp:    d.SurfaceYieldBp,
		ExpectedProfit:    d.ExpectedProfit,
		Status:            d.Status,
		FolderID:          d.FolderID,
		Note:              d.Note,
		CreatedBy:         d.CreatedBy,
		Expenses:          expenses,
		CreatedAt:         d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:         d.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Register mounts the routes of every variant on router (normally the protected /api group).
func Register(router fiber.Router, h *Handlers) {
	for _, desc := range Descriptors() {
		g := router.Group(desc.Path)
		g.Get("/", h.ListHandler(desc))
		g.Get("/export.xlsx", h.ExportHandler(desc))
		g.Get("/:id", h.GetHandler(desc))
		g.Post("/", h.CreateHandler(desc))
		g.Put("/:id", h.UpdateHandler(desc))
		g.Delete("/:id", h.DeleteHandler(desc))
		if desc.CreatesFolder {
			g.Get("/:id/files", h.ListFilesHandler(desc))
			g.Post("/:id/files", h.UploadHandler(desc))
		}
	}
}

// HTTPError maps service errors to fiber errors. Validation details go into the message.
func HTTPError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.NewError(fiber.StatusBadRequest, ve.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Deal not found")
	case errors.Is(err, filestore.ErrFolderNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Document folder not found")
	case errors.Is(err, filestore.ErrInvalidFileName):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("deal request failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Deal storage failed")
	}
}

func dealID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusNotFound, "Deal not found")
	}
	return uint(id), nil
}

func listQuery(c *fiber.Ctx, desc Descriptor) (Filter, Order, error) {
	limit := c.QueryInt("limit")
	if limit < 0 || limit > maxListLimit {
		return Filter{}, Order{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("limit must be between 0 and %d", maxListLimit))
	}
	f := Filter{
		Variant: desc.Variant,
		Status:  models.DealStatus(c.Query("status")),
		Query:   c.Query("q"),
		Limit:   limit,
	}
	order := NewestFirst
	if col := c.Query("sort"); col != "" {
		order = Order{Column: col, Desc: c.QueryBool("desc")}
	}
	return f, order, nil
}

// GET /api/<variant>?q=&status=&sort=&desc=&limit=
// The response carries an ETag that changes with every write to the variant.
func (h *Handlers) ListHandler(desc Descriptor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, order, err := listQuery(c, desc)
		if err != nil {
			return err
		}

		if h.Versions != nil {
			etag := h.Versions.ETag(desc.Variant, string(c.Request().URI().QueryString()))
			if c.Get(fiber.HeaderIfNoneMatch) == etag {
				return c.SendStatus(fiber.StatusNotModified)
			}
			c.Set(fiber.HeaderETag, etag)
		}

		deals, err := h.Service.List(c.UserContext(), f, order)
		if err != nil {
			return HTTPError(err)
		}
		resp := make([]DealResponse, 0, len(deals))
		for i := range deals {
			resp = append(resp, toResponse(&deals[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/<variant>/export.xlsx
func (h *Handlers) ExportHandler(desc Descriptor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, order, err := listQuery(c, desc)
		if err != nil {
			return err
		}
		deals, err := h.Service.List(c.UserContext(), f, order)
		if err != nil {
			return HTTPError(err)
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.xlsx"`, desc.Variant))
		if err := WriteWorkbook(c.Response().BodyWriter(), desc, deals); err != nil {
			log.Printf("export %s failed: %v", desc.Variant, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Export failed")
		}
		return nil
	}
}

// GET /api/<variant>/:id
func (h *Handlers) GetHandler(desc Descriptor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := dealID(c)
		if err != nil {
			return err
		}
		d, err := h.Service.Get(c.UserContext(), desc.Variant, id)
		if err != nil {
			return HTTPError(err)
		}
		return c.JSON(toResponse(d))
	}
}

// POST /api/<variant>
func (h *Handlers) CreateHandler(desc Descriptor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.RequireUser(c)
		if err != nil {
			return err
		}
		in, err := ParseInput(c.Body())
		if err != nil {
			return HTTPError(err)
		}

		d, err := h.Service.Create(c.UserContext(), desc.Variant, in, &user.ID)
		if err != nil {
			return HTTPError(err)
		}

		resp := toResponse(d)
		h.Activity.Record(c.UserContext(), activity.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  string(desc.Variant),
			EntityID:    d.ID,
			Action:      models.ActivityCreate,
			Description: fmt.Sprintf("%s created: %s", desc.Label, d.Code),
			After:       resp,
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// PUT /api/<variant>/:id
func (h *Handlers) UpdateHandler(desc Descriptor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.RequireUser(c)
		if err != nil {
			return err
		}
		id, err := dealID(c)
		if err != nil {
			return err
		}
		in, err := ParseInput(c.Body())
		if err != nil {
			return HTTPError(err)
		}

		before, err := h.Service.Get(c.UserContext(), desc.Variant, id)
		if err != nil {
			return HTTPError(err)
		}
		d, err := h.Service.Update(c.UserContext(), desc.Variant, id, in)
		if err != nil {
			return HTTPError(err)
		}

		resp := toResponse(d)
		h.Activity.Record(c.UserContext(), activity.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  string(desc.Variant),
			EntityID:    d.ID,
			Action:      models.ActivityUpdate,
			Description: fmt.Sprintf("%s updated: %s", desc.Label, d.Code),
			Before:      toResponse(before),
			After:       resp,
		})
		return c.JSON(resp)
	}
}

// DELETE /api/<variant>/:id
func (h *Handlers) DeleteHandler(desc Descriptor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.RequireUser(c)
		if err != nil {
			return err
		}
		id, err := dealID(c)
		if err != nil {
			return err
		}
		d, err := h.Service.Delete(c.UserContext(), desc.Variant, id)
		if err != nil {
			return HTTPError(err)
		}

		h.Activity.Record(c.UserContext(), activity.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  string(desc.Variant),
			EntityID:    d.ID,
			Action:      models.ActivityDelete,
			Description: fmt.Sprintf("%s deleted: %s", desc.Label, d.Code),
			Before:      toResponse(d),
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (h *Handlers) folderOf(c *fiber.Ctx, desc Descriptor) (*models.Deal, error) {
	id, err := dealID(c)
	if err != nil {
		return nil, err
	}
	d, err := h.Service.Get(c.UserContext(), desc.Variant, id)
	if err != nil {
		return nil, HTTPError(err)
	}
	if d.FolderID == "" || h.Files == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Deal has no document folder")
	}
	return d, nil
}

// GET /api/<variant>/:id/files?name=*.pdf
func (h *Handlers) ListFilesHandler(desc Descriptor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := h.folderOf(c, desc)
		if err != nil {
			return err
		}
		files, err := h.Files.ListFiles(c.UserContext(), d.FolderID)
		if err != nil {
			return HTTPError(err)
		}
		return c.JSON(filestore.FilterByName(files, c.Query("name")))
	}
}

// POST /api/<variant>/:id/files (multipart, field "file")
func (h *Handlers) UploadHandler(desc Descriptor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.RequireUser(c)
		if err != nil {
			return err
		}
		d, err := h.folderOf(c, desc)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "File could not be read: "+err.Error())
		}
		src, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "File could not be opened")
		}
		defer src.Close()

		uploaded, err := h.Files.Upload(c.UserContext(), d.FolderID, fileHeader.Filename,
			fileHeader.Header.Get(fiber.HeaderContentType), src)
		if err != nil {
			return HTTPError(err)
		}

		h.Activity.Record(c.UserContext(), activity.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  string(desc.Variant),
			EntityID:    d.ID,
			Action:      models.ActivityUpload,
			Description: fmt.Sprintf("File uploaded to %s: %s", d.Code, uploaded.Name),
			After:       uploaded,
		})
		return c.Status(fiber.StatusCreated).JSON(uploaded)
	}
}
