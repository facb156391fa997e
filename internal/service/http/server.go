package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/cutout-hub/internal/service/http/handler"
	"github.com/reusedev/cutout-hub/internal/service/http/middleware"
)

// Serve blocks until the server stops.
func Serve(port string, metrics http.Handler) error {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	initRouter(e, metrics)
	return e.Run(port)
}

func NewRouter(metrics http.Handler) *gin.Engine {
	e := gin.New()
	initRouter(e, metrics)
	return e
}

func initRouter(e *gin.Engine, metrics http.Handler) {
	e.Use(gin.Recovery(), middleware.RequestLogger())
	e.MaxMultipartMemory = 32 << 20
	if metrics != nil {
		e.GET("/metrics", gin.WrapH(metrics))
	}
	v1 := e.Group("/v1")
	removeBG := v1.Group("/remove-bg")
	{
		removeBG.POST("", handler.RemoveBackground)
		removeBG.POST("/batch", handler.BatchRemove)
		removeBG.POST("/batch/async", handler.BatchRemoveAsync)
	}
	v1.GET("/tasks", handler.TaskQuery)
	v1.POST("/replace-bg", handler.ReplaceBackground)
	v1.POST("/compress-pdf", handler.CompressPDF)
	v1.GET("/providers", handler.ListProviders)
	v1.GET("/history", handler.ListHistory)
}
