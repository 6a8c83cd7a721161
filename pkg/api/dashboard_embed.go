//go:build embed_ui

package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/engramhq/engram/pkg/logger"
)

//go:embed web/dist/**
var embeddedDashboardDist embed.FS

func newDashboardHandler(log logger.Logger) http.Handler {
	distFS, err := fs.Sub(embeddedDashboardDist, "web/dist")
	if err != nil {
		if log != nil {
			log.Error("failed to initialize embedded dashboard assets", "error", err)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "embedded dashboard assets are unavailable", http.StatusInternalServerError)
		})
	}
	return newDashboardFSHandler(distFS, log)
}
