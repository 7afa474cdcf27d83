package auth

import (
	"errors"
	"fmt"
	"strings"

	"propdesk-backend/internal/activity"
	"propdesk-backend/internal/config"
	"propdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var (
	ErrEmailTaken      = errors.New("email is already registered")
	ErrInvalidUserData = errors.New("invalid user")
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedAt string          `json:"created_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateUser validates the fields, hashes the password and stores the account.
// It is shared by the HTTP handlers and the admin CLI.
func CreateUser(db *gorm.DB, name, email, password string, role models.UserRole) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidUserData)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidUserData, minPasswordLength)
	}
	if role != models.RoleAdmin && role != models.RoleStaff {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUserData, role)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func userError(err error) error {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidUserData):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "User could not be created")
	}
}

// POST /api/auth/register - creates the first admin; closed once any user exists.
func RegisterHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var count int64
		if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Users could not be counted")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "Registration is closed; ask an admin for an account")
		}

		user, err := CreateUser(db, body.Name, body.Email, body.Password, models.RoleAdmin)
		if err != nil {
			return userError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}

// Authenticate checks an email/password pair.
func Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Email or password is wrong")
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Email or password is wrong")
	}
	return &user, nil
}

// POST /api/auth/login
func LoginHandler(db *gorm.DB, cfg *config.Config, recorder *activity.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		user, err := Authenticate(db, body.Email, body.Password)
		if err != nil {
			return err
		}

		token, err := GenerateToken(cfg.JWTSecret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Token could not be created")
		}

		recorder.Record(c.UserContext(), activity.LogOptions{
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.ActivityLogin,
			Description: fmt.Sprintf("Signed in: %s", user.Email),
		})

		return c.JSON(fiber.Map{
			"token": token,
			"user":  toUserResponse(user),
		})
	}
}

// GET /api/auth/me
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := RequireUser(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := db.First(&user, id.ID).Error; err == nil {
			return c.JSON(toUserResponse(&user))
		}

		// The account may have been removed after the token was issued.
		return c.JSON(fiber.Map{
			"id":    id.ID,
			"name":  id.Name,
			"email": id.Email,
			"role":  id.Role,
		})
	}
}

// GET /api/users (admin)
func ListUsersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := db.Order("created_at asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Users could not be listed")
		}
		resp := make([]UserResponse, 0, len(users))
		for i := range users {
			resp = append(resp, toUserResponse(&users[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/users (admin)
func CreateUserHandler(db *gorm.DB, recorder *activity.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := RequireUser(c)
		if err != nil {
			return err
		}

		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Role == "" {
			body.Role = models.RoleStaff
		}

		user, err := CreateUser(db, body.Name, body.Email, body.Password, body.Role)
		if err != nil {
			return userError(err)
		}

		recorder.Record(c.UserContext(), activity.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.Name,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.ActivityCreate,
			Description: fmt.Sprintf("User created: %s (%s)", user.Email, user.Role),
			After:       toUserResponse(user),
		})

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
	}
}
