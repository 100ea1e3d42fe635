// Package logging is the structured logger shared by the constellation
// daemon and its packages.
//
// A Logger wraps zap. Its level methods take a context and append the
// trace_id, span_id and request.id found there, so request logs line up
// with traces:
//
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.Info(ctx, "view built", zap.Int("gardens", n))
//
// TraceLevel sits below Debug. Levels below Error are sampled per level
// (see DefaultLevelSamplingConfig); errors always pass. When an OTel
// LoggerProvider is given, entries are also sent through the otelzap
// bridge.
//
// Packages that take a plain *zap.Logger, such as the aggregator and the
// letters store, receive Underlying().
//
// Tests use NewTestLogger and its Assert helpers.
package logging
