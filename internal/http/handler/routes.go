package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"itemapi/internal/service"
	"itemapi/internal/storage"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay thin: parsing and status mapping only, business logic lives in the
// services.
func RegisterRoutes(app *fiber.App, db *sql.DB, itemSvc service.ItemService, userSvc service.UserService, store storage.Storage) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	items := app.Group("/items")
	items.Get("/", ListItems(itemSvc))
	items.Get("/paginated", ListItemsPaginated(itemSvc))
	items.Get("/owner/:owner_id", ListItemsByOwner(itemSvc))
	items.Get("/:id", GetItem(itemSvc))
	items.Post("/", CreateItem(itemSvc))
	items.Put("/:id", UpdateItem(itemSvc))
	items.Delete("/:id", DeleteItem(itemSvc))
	items.Post("/:id/publish", PublishItem(itemSvc))
	items.Post("/:id/attachment", UploadItemAttachment(itemSvc, store))

	users := app.Group("/users")
	users.Get("/", ListUsers(userSvc))
	users.Get("/:id", GetUser(userSvc))
	users.Post("/", CreateUser(userSvc))
	users.Put("/:id", UpdateUser(userSvc))
	users.Delete("/:id", DeleteUser(userSvc))
}
