// Package server builds the Gin HTTP engine dispatch-agent serves, wiring
// every route directly against a *handlers.Handler rather than through a
// generated router interface.
//
// # Routes
//
// New registers the following groups under /api:
//
//	/api/tasks                   POST, GET               create / list
//	/api/tasks/:id               GET, DELETE             fetch / cancel
//	/api/tasks/failed/list       GET                     list failed jobs
//	/api/tasks/:id/retry         POST                    retry one
//	/api/tasks/retry-all         POST                    retry all
//	/file_parse                  POST                    legacy multipart submit
//	/api/instances               GET (+ admin: POST, PATCH, DELETE, enable/disable)
//	/api/stats                   GET
//	/api/stats/ws                GET (websocket)
//	/api/config                  GET (+ admin: PATCH)
//
// When cfg.Auth.Enabled is true, the instance-mutation and config-update
// routes are additionally gated behind middlewares.RequireAdmin, which
// verifies a JWT signed with auth.JWTSecret. With auth disabled those same
// routes are registered without the guard, matching a single-operator
// deployment.
//
// # Middleware
//
// Every route runs behind middlewares.Logger (structured request/response
// logging) and gin-contrib/zap's RecoveryWithZap (panic recovery with a
// logged stack trace, matching Gin's own recovery but through zap).
//
// # TLS
//
// Start serves plain HTTP unless ServerMode is "prod" and TLSCertificate is
// set, in which case it upgrades to ListenAndServeTLS using that path for
// both the certificate and key material. Certificate generation and
// rotation are the deployer's responsibility; the server only consumes the
// configured path.
package server
