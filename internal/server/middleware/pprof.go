package middleware

import (
	"net/http"
	"net/http/pprof"

	"github.com/labstack/echo/v4"
)

type PprofConfig struct {
	PathPrefix string
}

var DefaultPprofConfig = PprofConfig{
	PathPrefix: "",
}

// PprofWrap mounts the runtime profiles under {prefix}/debug/pprof.
func PprofWrap(e *echo.Echo, opts ...PprofConfig) {
	conf := DefaultPprofConfig
	if len(opts) > 0 {
		conf.PathPrefix = opts[0].PathPrefix
	}

	g := e.Group(conf.PathPrefix + "/debug/pprof")
	g.GET("/", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
	for _, name := range []string{"heap", "goroutine", "block", "mutex", "allocs", "threadcreate"} {
		g.GET("/"+name, echo.WrapHandler(pprof.Handler(name)))
	}
	g.GET("/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	g.GET("/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	g.GET("/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	g.GET("/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))
}
