package handler

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-manager-api/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-manager-api/internal/usecases/params"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
)

// DashboardResponse devolve as métricas do painel junto com os parâmetros
// resolvidos e o papel aplicado no recorte
type DashboardResponse struct {
	Params  params.ResolvedParams    `json:"params"`
	Role    domain.Role              `json:"role"`
	Metrics *domain.DashboardMetrics `json:"metrics"`
}

// GetDashboard calcula as métricas do painel para o perfil autenticado.
// O papel é resolvido de novo a partir do banco, não do token: uma troca de
// papel vale imediatamente, sem esperar o token expirar.
func GetDashboard(auth authenticating.Authenticator, service dashboarding.Dashboarder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		role, scopeID, err := auth.ResolveRole(r.Context(), claims.ProfileID)
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

		metrics, err := service.ComputeMetrics(r.Context(), role, scopeID, resolved)
		if err != nil {
			logrus.Error(err)
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao calcular métricas do painel", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DashboardResponse{
			Params:  resolved,
			Role:    role,
			Metrics: metrics,
		})
	}
}
