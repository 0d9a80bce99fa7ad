package handler

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"itemapi/internal/service"
	"itemapi/internal/storage"
)

func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(c *fiber.Ctx, name string, def int) (int, bool) {
	v := c.Query(name, strconv.Itoa(def))
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func pagination(c *fiber.Ctx) (skip, limit int, err error) {
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_SKIP", "invalid skip")
	}
	limit, ok = queryInt(c, "limit", 100)
	if !ok {
		return 0, 0, writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	return skip, limit, nil
}

// ListItems returns items with skip/limit pagination and an optional
// active_only filter.
func ListItems(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip, limit, err := pagination(c)
		if err != nil {
			return err
		}
		activeOnly := c.QueryBool("active_only", false)

		items, err := svc.GetItems(c.UserContext(), skip, limit, activeOnly)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// ListItemsPaginated returns one page plus the total match count for the
// same filter, for pagination UIs.
func ListItemsPaginated(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip, limit, err := pagination(c)
		if err != nil {
			return err
		}
		filter := service.ItemFilter{
			ActiveOnly: c.QueryBool("active_only", false),
			Title:      c.Query("title"),
		}

		res, err := svc.GetItemsPage(c.UserContext(), filter, skip, limit)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetItem returns a single item by ID.
func GetItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		item, err := svc.GetItem(c.UserContext(), id)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// CreateItem creates a new item. The title must be unique.
func CreateItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := service.ItemCreate{IsActive: true}
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if strings.TrimSpace(in.Title) == "" {
			return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title is required")
		}

		item, err := svc.CreateItem(c.UserContext(), in)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// UpdateItem applies a partial update; only fields present in the body change.
func UpdateItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.ItemUpdate
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
			return writeError(c, fiber.StatusBadRequest, "TITLE_REQUIRED", "title cannot be empty")
		}

		item, err := svc.UpdateItem(c.UserContext(), id, in)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// DeleteItem removes an item; protected items are rejected by the service.
func DeleteItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		item, err := svc.DeleteItem(c.UserContext(), id)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// PublishItem marks an item active.
func PublishItem(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		item, err := svc.PublishItem(c.UserContext(), id)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// ListItemsByOwner returns a user's items; the user must exist.
func ListItemsByOwner(svc service.ItemService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ownerID, ok := paramID(c, "owner_id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid owner id format")
		}
		skip, limit, err := pagination(c)
		if err != nil {
			return err
		}

		items, err := svc.GetItemsByOwner(c.UserContext(), ownerID, skip, limit)
		if err != nil {
			return handleServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// attachmentResponse is returned after a successful attachment upload.
type attachmentResponse struct {
	ItemID int64  `json:"item_id"`
	Key    string `json:"key"`
	URL    string `json:"url"`
}

// UploadItemAttachment stores a file for an existing item in object storage
// and returns a time-limited download URL. Storage is an optional
// collaborator: when it was never initialized the endpoint reports
// unavailability without touching the transactional store.
func UploadItemAttachment(svc service.ItemService, store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store == nil {
			return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "object storage is not available")
		}
		id, ok := paramID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		// The item must exist before anything is written to storage.
		if _, err := svc.GetItem(c.UserContext(), id); err != nil {
			return handleServiceError(c, err)
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		key := filepath.ToSlash(filepath.Join("items", strconv.FormatInt(id, 10), uuid.NewString()+filepath.Ext(fh.Filename)))

		info, err := store.Put(c.UserContext(), key, f, storage.PutObjectOptions{
			Size:        fh.Size,
			ContentType: ct,
			Metadata:    map[string]string{"original-filename": fh.Filename},
		})
		if err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "object storage request failed")
		}

		url, err := store.PresignGet(c.UserContext(), info.Key, 15*time.Minute)
		if err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "object storage request failed")
		}

		return c.Status(fiber.StatusCreated).JSON(attachmentResponse{
			ItemID: id,
			Key:    info.Key,
			URL:    url,
		})
	}
}
