package handler

import (
	"net/http"

	"github.com/vfg2006/sales-manager-api/internal/api/handler/router"
	"github.com/vfg2006/sales-manager-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-manager-api/internal/usecases/cataloging"
	"github.com/vfg2006/sales-manager-api/internal/usecases/customering"
	"github.com/vfg2006/sales-manager-api/internal/usecases/dashboarding"
	"github.com/vfg2006/sales-manager-api/internal/usecases/ordering"
	"github.com/vfg2006/sales-manager-api/internal/usecases/ranking"
	"github.com/vfg2006/sales-manager-api/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:        "/v1/profiles/:id/generate-password",
			Method:      http.MethodPost,
			Handler:     GeneratePassword(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/profiles/:id/change-password",
			Method:      http.MethodPost,
			Handler:     ChangePassword(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Profiles(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/profiles",
			Method:      http.MethodGet,
			Handler:     ListProfiles(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/profiles",
			Method:      http.MethodPost,
			Handler:     CreateProfile(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/profiles/:id",
			Method:      http.MethodGet,
			Handler:     GetProfile(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/profiles/:id",
			Method:      http.MethodPut,
			Handler:     UpdateProfile(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Customers(service customering.CustomerService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/customers",
			Method:      http.MethodGet,
			Handler:     ListCustomers(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSeller()},
		},
		{
			Path:        "/v1/customers",
			Method:      http.MethodPost,
			Handler:     CreateCustomer(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSeller()},
		},
		{
			Path:        "/v1/customers/:id",
			Method:      http.MethodGet,
			Handler:     GetCustomer(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSeller()},
		},
		{
			Path:        "/v1/customers/:id",
			Method:      http.MethodPut,
			Handler:     UpdateCustomer(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSeller()},
		},
	}
}

func Products(service cataloging.CatalogService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/products",
			Method:      http.MethodGet,
			Handler:     ListProducts(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/products",
			Method:      http.MethodPost,
			Handler:     CreateProduct(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/products/:id",
			Method:      http.MethodGet,
			Handler:     GetProduct(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/products/:id",
			Method:      http.MethodPut,
			Handler:     UpdateProduct(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}

func Orders(service ordering.OrderService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/orders",
			Method:      http.MethodGet,
			Handler:     ListOrders(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/orders",
			Method:      http.MethodPost,
			Handler:     CreateOrder(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSeller()},
		},
		{
			Path:        "/v1/orders/:id",
			Method:      http.MethodGet,
			Handler:     GetOrder(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
		{
			Path:        "/v1/orders/:id",
			Method:      http.MethodPut,
			Handler:     UpdateOrder(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSeller()},
		},
		{
			// As transições válidas dependem do papel e são validadas no caso de uso
			Path:        "/v1/orders/:id/status",
			Method:      http.MethodPatch,
			Handler:     UpdateOrderStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Dashboard(auth authenticating.Authenticator, service dashboarding.Dashboarder) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/dashboard",
			Method:      http.MethodGet,
			Handler:     GetDashboard(auth, service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AllRoles()},
		},
	}
}

func Rankings(auth authenticating.Authenticator, service ranking.RankingService) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/rankings",
			Method:      http.MethodGet,
			Handler:     GetSellerRankings(auth, service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOrSeller()},
		},
	}
}
