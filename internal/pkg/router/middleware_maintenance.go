package router

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/shandysiswandi/mfarelay/internal/pkg/config"
	"github.com/shandysiswandi/mfarelay/internal/pkg/goerror"
)

var errMaintenance = goerror.NewBusiness("service is under maintenance", goerror.CodeUnavailable)

func middlewareMaintenance(cfg config.Config) Middleware {
	var endpoints map[string]struct{}
	if cfg != nil {
		endpoints = lo.SliceToMap(cfg.GetArray("app.maintenance.endpoints"), func(e string) (string, struct{}) {
			return e, struct{}{}
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, blocked := endpoints[matchedRoutePath(r)]; blocked {
				encodeError(r.Context(), w, errMaintenance)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
