package v1

import (
	"taskpro/internal/api/v1/handlers"
	ws "taskpro/internal/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

const loginPage = `<!DOCTYPE html>
<html>
<head><title>Task Manager Pro</title></head>
<body>
  <h1>Task Manager Pro</h1>
  <p>You must sign in to see your tasks.</p>
  <a href="/api/auth/signin">Sign in with GitHub</a>
</body>
</html>`

func RegisterRoutes(app *fiber.App, taskHandler *handlers.TaskHandler, authHandler *handlers.AuthHandler, hub *ws.Hub) {
	// Login surface; the only page the access gate leaves public
	app.Get("/login", func(c *fiber.Ctx) error {
		c.Type("html")
		return c.SendString(loginPage)
	})

	// Auth
	authRoutes := app.Group("/api/auth")
	authRoutes.Get("/signin", authHandler.SignIn)
	authRoutes.Get("/callback/github", authHandler.Callback)
	authRoutes.Get("/session", authHandler.Session)
	authRoutes.Post("/signout", authHandler.SignOut)

	// Task
	taskRoutes := app.Group("/api/tasks")
	taskRoutes.Get("/", taskHandler.ListTasks)
	taskRoutes.Post("/", taskHandler.CreateTask)
	taskRoutes.Put("/:id", taskHandler.UpdateTask)
	taskRoutes.Delete("/:id", taskHandler.DeleteTask)

	// Task event stream; the gate has already resolved the owner
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/tasks", fiberws.New(func(c *fiberws.Conn) {
		client := &ws.Client{
			UserID: c.Locals("userID").(string),
			Conn:   c,
		}
		hub.Register <- client
		defer func() {
			hub.Unregister <- client
		}()
		for {
			// Clients only listen; reads just detect the close
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
