package api

import (
	"net/http"
	"sync"

	"storefront/app"
	"storefront/config"
	_ "storefront/docs"

	"github.com/gin-gonic/gin"
)

var (
	router *gin.Engine
	once   sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)
		config.LoadConfig()

		// Connections live as long as the function instance.
		router, _ = app.New()
	})
}

func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	router.ServeHTTP(w, r)
}
