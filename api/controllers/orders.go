package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fulluproar/commerce-backend/api/middleware"
	"github.com/fulluproar/commerce-backend/api/responses"
	"github.com/fulluproar/commerce-backend/api/validators"
	"github.com/fulluproar/commerce-backend/internal/orders"
	"github.com/fulluproar/commerce-backend/pkg/enums"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
	"github.com/fulluproar/commerce-backend/pkg/logger"
	"github.com/fulluproar/commerce-backend/pkg/outbox"
	"github.com/fulluproar/commerce-backend/pkg/pagination"
)

type ordersService interface {
	Create(ctx context.Context, input orders.CreateOrderInput, actor *outbox.ActorRef) (*orders.OrderView, error)
	Get(ctx context.Context, orderID uuid.UUID) (*orders.OrderView, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor *outbox.ActorRef) (*orders.OrderView, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, actor *outbox.ActorRef) (*orders.OrderView, error)
	List(ctx context.Context, status enums.OrderStatus, params pagination.Params) (*orders.OrderPage, error)
}

// OrderCreate places an order, reserving stock in the same transaction.
func OrderCreate(svc ordersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var body orders.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), body, actorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// OrderDetail returns one order with its lines.
func OrderDetail(svc ordersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// OrderCancel releases the reservation and cancels a pending order.
func OrderCancel(svc ordersService, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(ctx context.Context, svc ordersService, id uuid.UUID, actor *outbox.ActorRef) (*orders.OrderView, error) {
		return svc.Cancel(ctx, id, actor)
	})
}

// OrderMarkPaid commits the reservation and marks a pending order paid.
func OrderMarkPaid(svc ordersService, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(ctx context.Context, svc ordersService, id uuid.UUID, actor *outbox.ActorRef) (*orders.OrderView, error) {
		return svc.MarkPaid(ctx, id, actor)
	})
}

// OrderList returns a cursor page of orders, optionally filtered by status.
func OrderList(svc ordersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		status := enums.OrderStatus(strings.TrimSpace(r.URL.Query().Get("status")))

		page, err := svc.List(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func transitionHandler(svc ordersService, logg *logger.Logger, do func(context.Context, ordersService, uuid.UUID, *outbox.ActorRef) (*orders.OrderView, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := do(r.Context(), svc, orderID, actorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func actorFromContext(ctx context.Context) *outbox.ActorRef {
	email := middleware.EmailFromContext(ctx)
	if email == "" {
		return nil
	}
	roles := middleware.RolesFromContext(ctx)
	actor := &outbox.ActorRef{Email: email, Roles: make([]string, 0, len(roles))}
	for _, role := range roles {
		actor.Roles = append(actor.Roles, string(role))
	}
	return actor
}
