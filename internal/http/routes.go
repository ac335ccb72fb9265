package http

import (
	"github.com/labstack/echo/v4"
)

func Register(e *echo.Echo, tasks *TaskHandler, users *UserHandler, health *HealthHandler, auth echo.MiddlewareFunc) {
	e.GET("/healthz", health.Check)

	e.POST("/users/register", users.Register)
	e.POST("/users/login", users.Login)
	e.POST("/users/google-login", users.GoogleLogin)

	e.GET("/tasks/shared/:id", tasks.GetSharedTask)

	e.GET("/tasks/:userId", tasks.ListTasks, auth)
	e.POST("/tasks", tasks.CreateTask, auth)
	e.PUT("/tasks/:id", tasks.UpdateTask, auth)
	e.DELETE("/tasks/:id", tasks.DeleteTask, auth)
	e.DELETE("/tasks/attachment/:id", tasks.DeleteAttachment, auth)
}
