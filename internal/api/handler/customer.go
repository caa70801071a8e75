package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/customering"
	"github.com/vfg2006/sales-manager-api/internal/usecases/params"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
)

func ListCustomers(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		resolved := params.Resolve(rawParamsFrom(r), params.ListPageSize, time.Now().UTC())

		page, err := service.ListCustomers(r.Context(), claims.Role, claims.ProfileID, resolved.PageWindow())
		if err != nil {
			handleCustomerError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}
}

func GetCustomer(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do cliente não fornecido", nil)
			return
		}

		customer, err := service.GetCustomer(r.Context(), claims.Role, claims.ProfileID, id)
		if err != nil {
			handleCustomerError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(customer)
	}
}

func CreateCustomer(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		var customer domain.Customer
		if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		created, err := service.CreateCustomer(r.Context(), claims.ProfileID, &customer)
		if err != nil {
			handleCustomerError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func UpdateCustomer(service customering.CustomerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do cliente não fornecido", nil)
			return
		}

		var req domain.UpdateCustomerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		req.ID = id

		if err := service.UpdateCustomer(r.Context(), claims.Role, claims.ProfileID, &req); err != nil {
			handleCustomerError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	}
}

func handleCustomerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customering.ErrCustomerNotFound):
		apiErrors.WriteError(w, apiErrors.ErrCustomerNotFound, "Cliente não encontrado", nil)

	case errors.Is(err, customering.ErrNameRequired):
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Nome do cliente é obrigatório", nil)

	case errors.Is(err, customering.ErrNotCustomerOwner):
		apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Cliente pertence a outro vendedor", nil)

	default:
		logrus.Error(err)
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao processar cliente", nil)
	}
}
