package api

import (
	"net/http"

	goversion "github.com/caarlos0/go-version"
)

type SystemHandler struct {
	Version goversion.Info
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "service": "mentorship"}, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Version, http.StatusOK)
}

// BuildVersion assembles build metadata injected through -ldflags. Empty
// values fall back to what the Go toolchain embedded in the binary.
func BuildVersion(version, commit, date string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("mentorship", "Corporate mentorship request and learning service", ""),
		func(i *goversion.Info) {
			if version != "" {
				i.GitVersion = version
			}
			if commit != "" {
				i.GitCommit = commit
			}
			if date != "" {
				i.BuildDate = date
			}
		},
	)
}
