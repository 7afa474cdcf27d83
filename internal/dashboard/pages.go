package dashboard

import (
	"errors"
	"strconv"
	"time"

	"propdesk-backend/internal/auth"
	"propdesk-backend/internal/config"
	"propdesk-backend/internal/deal"
	"propdesk-backend/internal/filestore"
	"propdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const homePath = "/ui/income"

// Pages serves the server-rendered back office.
type Pages struct {
	DB     *gorm.DB
	Config *config.Config
	Deals  *deal.Service
	Files  filestore.Store
}

// Register mounts the login flow and the deal pages. app must use NewEngine as its views.
func Register(app *fiber.App, p *Pages) {
	app.Get("/", func(c *fiber.Ctx) error { return c.Redirect(homePath) })
	app.Get("/login", p.LoginPage)
	app.Post("/login", p.Login)
	app.Post("/logout", p.Logout)

	ui := app.Group("/ui", p.RequireSession)
	ui.Get("/:variant", p.DealsPage)
	ui.Get("/:variant/:id", p.DealPage)
}

// RequireSession redirects to the login page unless the token cookie is valid.
func (p *Pages) RequireSession(c *fiber.Ctx) error {
	claims, err := auth.ParseToken(p.Config.JWTSecret, c.Cookies(auth.TokenCookie))
	if err != nil {
		return c.Redirect("/login")
	}
	auth.SetIdentity(c, claims)
	return c.Next()
}

func (p *Pages) LoginPage(c *fiber.Ctx) error {
	if _, err := auth.ParseToken(p.Config.JWTSecret, c.Cookies(auth.TokenCookie)); err == nil {
		return c.Redirect(homePath)
	}
	return c.Render("login", fiber.Map{"Error": "", "Email": ""}, "")
}

func (p *Pages) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	user, err := auth.Authenticate(p.DB, email, c.FormValue("password"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
			"Error": "Email or password is wrong",
			"Email": email,
		}, "")
	}
	token, err := auth.GenerateToken(p.Config.JWTSecret, user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Token could not be created")
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(homePath)
}

func (p *Pages) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/login")
}

func (p *Pages) page(c *fiber.Ctx, title string, current models.DealVariant, bind fiber.Map) fiber.Map {
	user, _ := auth.CurrentUser(c)
	bind["Title"] = title
	bind["User"] = user
	bind["Current"] = current
	bind["Variants"] = deal.Descriptors()
	return bind
}

func descriptor(c *fiber.Ctx) (deal.Descriptor, error) {
	desc, ok := deal.Lookup(models.DealVariant(c.Params("variant")))
	if !ok {
		return deal.Descriptor{}, fiber.NewError(fiber.StatusNotFound, "Page not found")
	}
	return desc, nil
}

// GET /ui/:variant?q=
func (p *Pages) DealsPage(c *fiber.Ctx) error {
	desc, err := descriptor(c)
	if err != nil {
		return err
	}
	query := c.Query("q")
	deals, err := p.Deals.List(c.UserContext(), deal.Filter{Variant: desc.Variant, Query: query}, deal.NewestFirst)
	if err != nil {
		return deal.HTTPError(err)
	}
	summaries, err := Summarize(c.UserContext(), p.DB)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Summary could not be computed")
	}
	summary, _ := lo.Find(summaries, func(s VariantSummary) bool { return s.Variant == desc.Variant })

	return c.Render("deals", p.page(c, desc.Label, desc.Variant, fiber.Map{
		"Desc":    desc,
		"Deals":   deals,
		"Query":   query,
		"Summary": summary,
	}), Layout)
}

// GET /ui/:variant/:id
func (p *Pages) DealPage(c *fiber.Ctx) error {
	desc, err := descriptor(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Deal not found")
	}
	d, err := p.Deals.Get(c.UserContext(), desc.Variant, uint(id))
	if err != nil {
		return deal.HTTPError(err)
	}

	hasFolder := d.FolderID != "" && p.Files != nil
	var files []filestore.File
	if hasFolder {
		files, err = p.Files.ListFiles(c.UserContext(), d.FolderID)
		if err != nil && !errors.Is(err, filestore.ErrFolderNotFound) {
			return deal.HTTPError(err)
		}
	}

	return c.Render("deal", p.page(c, d.Code, desc.Variant, fiber.Map{
		"Desc":      desc,
		"Deal":      d,
		"HasFolder": hasFolder,
		"Files":     files,
	}), Layout)
}
