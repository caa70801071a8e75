package handler

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-manager-api/internal/usecases/params"
	"github.com/vfg2006/sales-manager-api/internal/usecases/ranking"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
)

// RankingResponse devolve os rankings de vendedores com a janela aplicada
type RankingResponse struct {
	Window   domain.Window          `json:"window"`
	Rankings *domain.SellerRankings `json:"rankings"`
}

// GetSellerRankings calcula os rankings de vendedores da janela solicitada.
// A visibilidade de valores monetários depende do papel resolvido do
// solicitante.
func GetSellerRankings(auth authenticating.Authenticator, service ranking.RankingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		viewer, _, err := auth.ResolveRole(r.Context(), claims.ProfileID)
		if err != nil {
			if errors.Is(err, authenticating.ErrProfileNotFound) {
				apiErrors.WriteError(w, apiErrors.ErrUserNotFound, "Perfil não encontrado", nil)
				return
			}
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao resolver papel do perfil", nil)
			return
		}

		resolved := params.Resolve(rawParamsFrom(r), params.DashboardPageSize, time.Now().UTC())

		rankings, err := service.ComputeRankings(r.Context(), resolved.Window, viewer)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao calcular rankings", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(RankingResponse{
			Window:   resolved.Window,
			Rankings: rankings,
		})
	}
}
