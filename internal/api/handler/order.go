package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/ordering"
	"github.com/vfg2006/sales-manager-api/internal/usecases/params"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
)

type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// OrderPageResponse devolve a página de pedidos junto com os parâmetros
// resolvidos, para que o cliente saiba exatamente o que foi aplicado
type OrderPageResponse struct {
	Params params.ResolvedParams `json:"params"`
	Orders []*domain.Order       `json:"orders"`
	Total  int                   `json:"total_count"`
}

// rawParamsFrom monta os parâmetros brutos a partir da query string
func rawParamsFrom(r *http.Request) params.RawParams {
	q := r.URL.Query()
	return params.RawParams{
		Sort:  q.Get("sort"),
		Dir:   q.Get("dir"),
		Page:  q.Get("page"),
		Range: q.Get("range"),
		Start: q.Get("start"),
		End:   q.Get("end"),
	}
}

func ListOrders(service ordering.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		resolved := params.Resolve(rawParamsFrom(r), params.ListPageSize, time.Now().UTC())

		page, err := service.ListOrders(r.Context(), claims.Role, claims.ProfileID, resolved)
		if err != nil {
			handleOrderError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(OrderPageResponse{
			Params: resolved,
			Orders: page.Orders,
			Total:  page.TotalCount,
		})
	}
}

func GetOrder(service ordering.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do pedido não fornecido", nil)
			return
		}

		order, err := service.GetOrder(r.Context(), claims.Role, claims.ProfileID, id)
		if err != nil {
			handleOrderError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(order)
	}
}

func CreateOrder(service ordering.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		var req ordering.CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		order, err := service.CreateOrder(r.Context(), claims.ProfileID, claims.ProfileName, &req)
		if err != nil {
			handleOrderError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(order)
	}
}

func UpdateOrder(service ordering.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do pedido não fornecido", nil)
			return
		}

		var req ordering.UpdateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		req.OrderID = id

		order, err := service.UpdateOrder(r.Context(), claims.Role, claims.ProfileID, &req)
		if err != nil {
			handleOrderError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(order)
	}
}

// UpdateOrderStatus altera o status do pedido respeitando as transições
// permitidas para o papel do solicitante
func UpdateOrderStatus(service ordering.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do pedido não fornecido", nil)
			return
		}

		var req UpdateOrderStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		if err := service.UpdateOrderStatus(r.Context(), claims.Role, id, req.Status); err != nil {
			handleOrderError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// handleOrderError mapeia os erros do caso de uso de pedidos para a resposta
// padronizada da API
func handleOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ordering.ErrOrderNotFound):
		apiErrors.WriteError(w, apiErrors.ErrOrderNotFound, "Pedido não encontrado", nil)

	case errors.Is(err, ordering.ErrCustomerNotFound):
		apiErrors.WriteError(w, apiErrors.ErrCustomerNotFound, "Cliente não encontrado", nil)

	case errors.Is(err, ordering.ErrProductNotFound):
		apiErrors.WriteError(w, apiErrors.ErrProductNotFound, "Produto não encontrado", nil)

	case errors.Is(err, ordering.ErrProductInactive):
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Produto inativo não pode compor pedidos", nil)

	case errors.Is(err, ordering.ErrEmptyOrder):
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Pedido precisa de ao menos um item", nil)

	case errors.Is(err, ordering.ErrInvalidQuantity):
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Quantidade de item deve ser positiva", nil)

	case errors.Is(err, ordering.ErrInvalidStatus):
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Status de pedido desconhecido", nil)

	case errors.Is(err, ordering.ErrDimensionExceeded):
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Dimensões solicitadas excedem o máximo do produto", nil)

	case errors.Is(err, ordering.ErrForbiddenTransition):
		apiErrors.WriteError(w, apiErrors.ErrInvalidStatusTransition, "Transição de status não permitida", nil)

	case errors.Is(err, ordering.ErrNotOrderOwner):
		apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Pedido pertence a outro vendedor", nil)

	default:
		logrus.Error(err)
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao processar pedido", nil)
	}
}
