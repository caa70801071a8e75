package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-manager-api/internal/domain"
	"github.com/vfg2006/sales-manager-api/internal/usecases/cataloging"
	"github.com/vfg2006/sales-manager-api/internal/usecases/params"
	"github.com/vfg2006/sales-manager-api/pkg/apiErrors"
)

func ListProducts(service cataloging.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resolved := params.Resolve(rawParamsFrom(r), params.ListPageSize, time.Now().UTC())

		// Por padrão só entram produtos ativos; all=true inclui os inativos
		onlyActive := r.URL.Query().Get("all") != "true"

		page, err := service.ListProducts(r.Context(), onlyActive, resolved.PageWindow())
		if err != nil {
			handleProductError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(page)
	}
}

func GetProduct(service cataloging.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do produto não fornecido", nil)
			return
		}

		product, err := service.GetProduct(r.Context(), id)
		if err != nil {
			handleProductError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(product)
	}
}

func CreateProduct(service cataloging.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var product domain.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		created, err := service.CreateProduct(r.Context(), &product)
		if err != nil {
			handleProductError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func UpdateProduct(service cataloging.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		if id == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do produto não fornecido", nil)
			return
		}

		var req domain.UpdateProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		req.ID = id

		if err := service.UpdateProduct(r.Context(), &req); err != nil {
			handleProductError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	}
}

func handleProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cataloging.ErrProductNotFound):
		apiErrors.WriteError(w, apiErrors.ErrProductNotFound, "Produto não encontrado", nil)

	case errors.Is(err, cataloging.ErrNameRequired):
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Nome do produto é obrigatório", nil)

	case errors.Is(err, cataloging.ErrInvalidPrice):
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Preço deve ser positivo", nil)

	default:
		logrus.Error(err)
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao processar produto", nil)
	}
}
