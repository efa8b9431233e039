// Package logging configures the JSON slog logger and carries a request-scoped
// copy of it through context.Context.
//
// The HTTP logging middleware stores ForRequest(ctx, logger) with WithLogger, so
// handlers get request_id and trace_id on every line:
//
//	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)
//	slog.SetDefault(logger)
//
//	func (h DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
//	    logging.FromContext(r.Context()).Info("rendering article")
//	}
package logging
