package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// VersionInfo is the body of the version endpoint.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// LivenessHandler answers as long as the process can serve requests. It
// runs no checks.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return probe(func(r *http.Request) (int, any) {
		return http.StatusOK, c.CheckLiveness(r.Context())
	})
}

// ReadinessHandler runs every registered check. A failed advisory check
// (such as a missing roster) reports "degraded" with 200 so the instance
// keeps receiving check-ins; a failed critical check (corrupt store,
// unwritable upload directory) reports 503.
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "store":  {"status": "ok", "critical": true, "duration_ms": 0.01},
//	        "roster": {"status": "unhealthy", "critical": false, "message": "roster file not found"}
//	    },
//	    "timestamp": "2024-01-15T08:00:00+07:00"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return probe(func(r *http.Request) (int, any) {
		status := c.CheckReadiness(r.Context())
		if !status.Ready() {
			return http.StatusServiceUnavailable, status
		}
		return http.StatusOK, status
	})
}

// VersionHandler reports the build the process is running.
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
	return probe(func(*http.Request) (int, any) {
		return http.StatusOK, info
	})
}

// probe adapts fn to a GET/HEAD-only JSON endpoint. HEAD gets the status
// and headers without a body.
func probe(fn func(r *http.Request) (int, any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
		default:
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		code, body := fn(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}
