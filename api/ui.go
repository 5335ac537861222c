package api

import (
	_ "embed"
	"github.com/gin-gonic/gin"
	"net/http"
	"os"
)

// IndexHTMLPath overrides the embedded page when present on disk.
const IndexHTMLPath = "./ui/index.html"

//go:embed ui/index.html
var IndexHTML []byte

func SetupUI(engine *gin.Engine) {
	engine.GET("/", func(c *gin.Context) {
		if stat, err := os.Stat(IndexHTMLPath); err == nil && !stat.IsDir() {
			c.File(IndexHTMLPath)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", IndexHTML)
	})
}
