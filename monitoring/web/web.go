// Package web holds the pages of the monitoring server.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

//go:embed dist
var embedded embed.FS

// DevEnv names the environment variable that, when set to 1 or true, makes
// the pages load from the source tree instead of the binary.
const DevEnv = "SKEWCACHE_MONITOR_DEV"

// pages maps the routes of the monitor to the files that render them.
var pages = map[string]string{
	"/":       "index.html",
	"/blocks": "blocks.html",
}

// Handler serves the monitor pages: the statistics of every tag store on /,
// and the block map of one tag store on /blocks?store=<name>. Other paths are
// looked up in the asset directory.
func Handler() http.Handler {
	assets, dev := assetFS()
	files := http.FileServer(http.FS(assets))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dev {
			w.Header().Set("Cache-Control", "no-store")
		}

		page, ok := pages[r.URL.Path]
		if !ok {
			files.ServeHTTP(w, r)
			return
		}

		http.ServeFileFS(w, r, assets, page)
	})
}

func assetFS() (assets fs.FS, dev bool) {
	if isDevelopmentMode() {
		_, self, _, ok := runtime.Caller(0)
		if !ok {
			panic("cannot locate the monitor pages")
		}

		return os.DirFS(filepath.Join(filepath.Dir(self), "dist")), true
	}

	assets, err := fs.Sub(embedded, "dist")
	if err != nil {
		panic(err)
	}

	return assets, false
}

func isDevelopmentMode() bool {
	v := strings.ToLower(os.Getenv(DevEnv))
	return v == "1" || v == "true"
}
