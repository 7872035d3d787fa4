package app

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"relaylog/pkg/api"
	"relaylog/pkg/auth"
	"relaylog/pkg/banner"
	"relaylog/pkg/config"
)

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "none" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "unknown" {
		verStr += " @ " + a.buildDate
	}
	banner.PrintWithEff(a.eff, verStr)
}

// startHTTP builds the handler, starts the HTTP server in a goroutine and
// returns a channel that will contain any server error.
func (a *App) startHTTP() <-chan error {
	router := api.NewRouter(a.deps, func() bool { return a.docs != nil })
	router.PathPrefix("/docs/").Handler(httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	router.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))

	// key sets come from the runtime registry installed during New
	secCfg := auth.SecConfig{
		AllowedOrigins: append([]string{}, a.eff.Config.Security.CORS.AllowedOrigins...),
		RPS:            a.eff.Config.Security.RateLimit.RPS,
		Burst:          a.eff.Config.Security.RateLimit.Burst,
		IPWhitelist:    append([]string{}, a.eff.Config.Security.IPWhitelist...),
		BackendKeys:    config.GetBackendKeys(),
		FrontendKeys:   config.GetFrontendKeys(),
		AdminKeys:      config.GetAdminKeys(),
		AllowUnauth:    a.eff.Config.Security.APIKeys.AllowUnauth,
	}

	wrapped := auth.AuthenticateRequestMiddleware(secCfg)(router)

	a.srv = &http.Server{Addr: a.eff.Addr, Handler: wrapped}

	errCh := make(chan error, 1)
	go func() {
		cert := a.eff.Config.Server.TLS.CertFile
		key := a.eff.Config.Server.TLS.KeyFile
		if cert != "" && key != "" {
			errCh <- a.srv.ListenAndServeTLS(cert, key)
		} else {
			errCh <- a.srv.ListenAndServe()
		}
	}()
	return errCh
}
