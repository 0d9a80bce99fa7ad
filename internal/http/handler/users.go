package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"itemapi/internal/service"
)

// ListUsers returns users with skip/limit pagination.
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip, limit, err := pagination(c)
		if err != nil {
			return err
		}
		users, err := svc.GetUsers(c.UserContext(), skip, limit)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(users)
	}
}

// GetUser returns a single user by ID.
func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		user, err := svc.GetUser(c.UserContext(), id)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(user)
	}
}

// CreateUser creates a new user.
func CreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UserCreate
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if strings.TrimSpace(in.Name) == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name is required")
		}

		user, err := svc.CreateUser(c.UserContext(), in)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// UpdateUser applies a partial update; only fields present in the body change.
func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.UserUpdate
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
			return writeError(c, fiber.StatusBadRequest, "NAME_REQUIRED", "name cannot be empty")
		}

		user, err := svc.UpdateUser(c.UserContext(), id, in)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(user)
	}
}

// DeleteUser removes a user with no owned items.
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		user, err := svc.DeleteUser(c.UserContext(), id)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(user)
	}
}
