// Package aggregator fans one request out to a fixed set of HTTP upstreams
// and joins the answers with a fanin.Coordinator.
//
// Every upstream is one task keyed by its name. GET /aggregate returns
//
//	{"data": {"run_id": "...", "mode": "collect_all", "results": {
//	    "users":  {"status": "ok", "http_status": 200, "body": {...}, "duration_ms": 12},
//	    "orders": {"status": "failed", "error": {"code": "UPSTREAM_ERROR", ...}, "duration_ms": 40}}}}
//
// In fail-fast mode the first failing upstream answers for the whole request
// through its AppError. In collect-all mode partial results are served with
// a MULTIPLE_FAILURES error beside them.
package aggregator
