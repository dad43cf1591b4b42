// Package http exposes the REST surface. Handlers translate requests into
// commands and queries and map application errors onto HTTP status codes.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// CallbackDecoder extracts the payment reference from a provider's
// server-to-server callback body.
type CallbackDecoder interface {
	DecodeCallback(body []byte) (string, error)
}

// SignatureVerifier checks a checkout callback signature.
type SignatureVerifier interface {
	VerifySignature(orderReference, paymentID, signature string) error
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	addCartLineHandler        commands.AddCartLineCommandHandler
	changeCartQuantityHandler commands.ChangeCartQuantityCommandHandler
	clearCartHandler          commands.ClearCartCommandHandler
	checkoutHandler           commands.CheckoutCommandHandler
	confirmPaymentHandler     commands.ConfirmPaymentCommandHandler
	changeOrderStatusHandler  commands.ChangeOrderStatusCommandHandler
	updateLocationHandler     commands.UpdatePartnerLocationCommandHandler
	setAvailabilityHandler    commands.SetPartnerAvailabilityCommandHandler

	// Query handlers
	getCartHandler           queries.GetCartQueryHandler
	getOrderHandler          queries.GetOrderQueryHandler
	getCustomerOrdersHandler queries.GetCustomerOrdersQueryHandler
	getAssignedOrdersHandler queries.GetAssignedOrdersQueryHandler
	getDashboardHandler      queries.GetPartnerDashboardQueryHandler

	// Payment callback plumbing
	callbackDecoder   CallbackDecoder
	signatureVerifier SignatureVerifier
}

// NewServer creates an HTTP server with the required command and query handlers.
func NewServer(
	addCartLineHandler commands.AddCartLineCommandHandler,
	changeCartQuantityHandler commands.ChangeCartQuantityCommandHandler,
	clearCartHandler commands.ClearCartCommandHandler,
	checkoutHandler commands.CheckoutCommandHandler,
	confirmPaymentHandler commands.ConfirmPaymentCommandHandler,
	changeOrderStatusHandler commands.ChangeOrderStatusCommandHandler,
	updateLocationHandler commands.UpdatePartnerLocationCommandHandler,
	setAvailabilityHandler commands.SetPartnerAvailabilityCommandHandler,
	getCartHandler queries.GetCartQueryHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getCustomerOrdersHandler queries.GetCustomerOrdersQueryHandler,
	getAssignedOrdersHandler queries.GetAssignedOrdersQueryHandler,
	getDashboardHandler queries.GetPartnerDashboardQueryHandler,
	callbackDecoder CallbackDecoder,
	signatureVerifier SignatureVerifier,
) *Server {
	return &Server{
		addCartLineHandler:        addCartLineHandler,
		changeCartQuantityHandler: changeCartQuantityHandler,
		clearCartHandler:          clearCartHandler,
		checkoutHandler:           checkoutHandler,
		confirmPaymentHandler:     confirmPaymentHandler,
		changeOrderStatusHandler:  changeOrderStatusHandler,
		updateLocationHandler:     updateLocationHandler,
		setAvailabilityHandler:    setAvailabilityHandler,
		getCartHandler:            getCartHandler,
		getOrderHandler:           getOrderHandler,
		getCustomerOrdersHandler:  getCustomerOrdersHandler,
		getAssignedOrdersHandler:  getAssignedOrdersHandler,
		getDashboardHandler:       getDashboardHandler,
		callbackDecoder:           callbackDecoder,
		signatureVerifier:         signatureVerifier,
	}
}

// RegisterRoutes mounts all REST routes under /api/v1. Payment callbacks are
// public; everything else requires a bearer token.
func (s *Server) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	api := e.Group("/api/v1")

	api.POST("/payments/phonepe/callback", s.HandlePhonePeCallback)
	api.POST("/payments/razorpay/callback", s.HandleRazorpayCallback)

	secured := api.Group("", auth)

	secured.GET("/cart", s.GetCart)
	secured.POST("/cart/items", s.AddCartItem)
	secured.PATCH("/cart/items/:menuItemId", s.ChangeCartItemQuantity)
	secured.DELETE("/cart", s.ClearCart)

	secured.POST("/orders", s.Checkout)
	secured.GET("/orders", s.GetMyOrders)
	secured.GET("/orders/:id", s.GetOrder)
	secured.PATCH("/orders/:id/status", s.ChangeOrderStatus)
	secured.POST("/payments/verify", s.VerifyPayment)

	secured.PATCH("/delivery/location", s.UpdateLocation)
	secured.PATCH("/delivery/availability", s.SetAvailability)
	secured.GET("/delivery/orders", s.GetAssignedOrders)
	secured.PATCH("/delivery/orders/:id/status", s.ChangeDeliveryOrderStatus)
	secured.GET("/delivery/dashboard", s.GetDashboard)
}

// GetCart handles GET /api/v1/cart.
func (s *Server) GetCart(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}

	query, err := queries.NewGetCartQuery(identity.ID)
	if err != nil {
		return s.respondError(ctx, err)
	}

	response, err := s.getCartHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toCartQueryJSON(response))
}

// AddCartItem handles POST /api/v1/cart/items.
func (s *Server) AddCartItem(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}

	var request addCartItemRequest
	if err := ctx.Bind(&request); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	menuItemID, err := kernel.UUIDFromString(request.MenuItemID)
	if err != nil {
		return s.badRequest(ctx, "Invalid menu item id")
	}

	cmd, err := commands.NewAddCartLineCommand(identity.ID, menuItemID, request.Quantity)
	if err != nil {
		return s.respondError(ctx, err)
	}

	updated, err := s.addCartLineHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toCartJSON(updated))
}

// ChangeCartItemQuantity handles PATCH /api/v1/cart/items/:menuItemId. The
// quantity is absolute; zero or less removes the line.
func (s *Server) ChangeCartItemQuantity(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}

	menuItemID, err := kernel.UUIDFromString(ctx.Param("menuItemId"))
	if err != nil {
		return s.badRequest(ctx, "Invalid menu item id")
	}

	var request changeCartQuantityRequest
	if err := ctx.Bind(&request); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewChangeCartQuantityCommand(identity.ID, menuItemID, request.Quantity)
	if err != nil {
		return s.respondError(ctx, err)
	}

	updated, err := s.changeCartQuantityHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toCartJSON(updated))
}

// ClearCart handles DELETE /api/v1/cart.
func (s *Server) ClearCart(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}

	cmd, err := commands.NewClearCartCommand(identity.ID)
	if err != nil {
		return s.respondError(ctx, err)
	}

	if err := s.clearCartHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// Checkout handles POST /api/v1/orders.
func (s *Server) Checkout(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}

	var request checkoutRequest
	if err := ctx.Bind(&request); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	point, err := kernel.NewGeoPoint(request.Latitude, request.Longitude)
	if err != nil {
		return s.respondError(ctx, err)
	}
	address, err := kernel.NewAddress(request.Street, request.City, point)
	if err != nil {
		return s.respondError(ctx, err)
	}

	cmd, err := commands.NewCheckoutCommand(identity.ID, address, request.PaymentMethod)
	if err != nil {
		return s.respondError(ctx, err)
	}

	result, err := s.checkoutHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, checkoutResponseJSON{
		Order:      toOrderJSON(result.Order),
		PaymentURL: result.RedirectURL,
	})
}

// GetMyOrders handles GET /api/v1/orders.
func (s *Server) GetMyOrders(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}

	query, err := queries.NewGetCustomerOrdersQuery(identity.ID)
	if err != nil {
		return s.respondError(ctx, err)
	}

	orders, err := s.getCustomerOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderQueryListJSON(orders))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}

	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetOrderQuery(orderID, queries.Viewer{
		ID:   identity.ID,
		Role: identity.Role,
	})
	if err != nil {
		return s.respondError(ctx, err)
	}

	response, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderQueryJSON(response))
}

// ChangeOrderStatus handles PATCH /api/v1/orders/:id/status.
func (s *Server) ChangeOrderStatus(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}

	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.badRequest(ctx, "Invalid order id")
	}

	var request changeOrderStatusRequest
	if err := ctx.Bind(&request); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	next, err := order.StatusFromString(request.Status)
	if err != nil {
		return s.badRequest(ctx, "Invalid order status")
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, next, commands.Actor{
		ID:   identity.ID,
		Role: identity.Role,
	})
	if err != nil {
		return s.respondError(ctx, err)
	}

	updated, err := s.changeOrderStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderJSON(updated))
}

// ChangeDeliveryOrderStatus handles PATCH /api/v1/delivery/orders/:id/status.
// Same transition flow as ChangeOrderStatus, reachable only with the delivery
// role; the command limits the partner to its own orders and its own subset
// of transitions.
func (s *Server) ChangeDeliveryOrderStatus(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}
	if identity.Role != kernel.RoleDelivery {
		return s.forbidden(ctx)
	}

	return s.ChangeOrderStatus(ctx)
}

// VerifyPayment handles POST /api/v1/payments/verify. The client calls it
// after returning from the gateway's checkout page.
func (s *Server) VerifyPayment(ctx echo.Context) error {
	var request verifyPaymentRequest
	if err := ctx.Bind(&request); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewConfirmPaymentCommand(request.Reference)
	if err != nil {
		return s.respondError(ctx, err)
	}

	// Reconciliation mutates payment state and must run to completion even
	// if the client hangs up mid-request.
	updated, err := s.confirmPaymentHandler.Handle(context.WithoutCancel(ctx.Request().Context()), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderJSON(updated))
}

// HandlePhonePeCallback handles POST /api/v1/payments/phonepe/callback, the
// provider's server-to-server notification. The decoded reference only
// identifies the attempt; reconciliation re-verifies with the provider.
func (s *Server) HandlePhonePeCallback(ctx echo.Context) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return s.badRequest(ctx, "Invalid callback payload")
	}

	reference, err := s.callbackDecoder.DecodeCallback(body)
	if err != nil {
		return s.badRequest(ctx, "Invalid callback payload")
	}

	cmd, err := commands.NewConfirmPaymentCommand(reference)
	if err != nil {
		return s.respondError(ctx, err)
	}

	if _, err := s.confirmPaymentHandler.Handle(context.WithoutCancel(ctx.Request().Context()), cmd); err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.String(http.StatusOK, "OK")
}

// HandleRazorpayCallback handles POST /api/v1/payments/razorpay/callback.
// The signature must match before the reference is reconciled.
func (s *Server) HandleRazorpayCallback(ctx echo.Context) error {
	var request razorpayCallbackRequest
	if err := ctx.Bind(&request); err != nil {
		return s.badRequest(ctx, "Invalid callback payload")
	}

	if err := s.signatureVerifier.VerifySignature(request.OrderID, request.PaymentID, request.Signature); err != nil {
		return s.badRequest(ctx, "Invalid callback signature")
	}

	cmd, err := commands.NewConfirmPaymentCommand(request.OrderID)
	if err != nil {
		return s.respondError(ctx, err)
	}

	if _, err := s.confirmPaymentHandler.Handle(context.WithoutCancel(ctx.Request().Context()), cmd); err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.String(http.StatusOK, "OK")
}

// UpdateLocation handles PATCH /api/v1/delivery/location.
func (s *Server) UpdateLocation(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}
	if identity.Role != kernel.RoleDelivery {
		return s.forbidden(ctx)
	}

	var request updateLocationRequest
	if err := ctx.Bind(&request); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	position, err := kernel.NewGeoPoint(request.Latitude, request.Longitude)
	if err != nil {
		return s.respondError(ctx, err)
	}

	cmd, err := commands.NewUpdatePartnerLocationCommand(identity.ID, position)
	if err != nil {
		return s.respondError(ctx, err)
	}

	if err := s.updateLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// SetAvailability handles PATCH /api/v1/delivery/availability.
func (s *Server) SetAvailability(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}
	if identity.Role != kernel.RoleDelivery {
		return s.forbidden(ctx)
	}

	var request setAvailabilityRequest
	if err := ctx.Bind(&request); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewSetPartnerAvailabilityCommand(identity.ID, request.Available)
	if err != nil {
		return s.respondError(ctx, err)
	}

	if err := s.setAvailabilityHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetAssignedOrders handles GET /api/v1/delivery/orders.
func (s *Server) GetAssignedOrders(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}
	if identity.Role != kernel.RoleDelivery {
		return s.forbidden(ctx)
	}

	query, err := queries.NewGetAssignedOrdersQuery(identity.ID)
	if err != nil {
		return s.respondError(ctx, err)
	}

	orders, err := s.getAssignedOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderQueryListJSON(orders))
}

// GetDashboard handles GET /api/v1/delivery/dashboard.
func (s *Server) GetDashboard(ctx echo.Context) error {
	identity, ok := IdentityFrom(ctx)
	if !ok {
		return s.unauthenticated(ctx)
	}
	if identity.Role != kernel.RoleDelivery {
		return s.forbidden(ctx)
	}

	query, err := queries.NewGetPartnerDashboardQuery(identity.ID)
	if err != nil {
		return s.respondError(ctx, err)
	}

	response, err := s.getDashboardHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toDashboardJSON(response))
}

func (s *Server) respondError(ctx echo.Context, err error) error {
	status := statusForError(err)
	return ctx.JSON(status, errorResponse{Code: status, Message: err.Error()})
}

// statusForError maps application errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrForbidden),
		errors.Is(err, queries.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, order.ErrStateConflict),
		errors.Is(err, order.ErrPartnerAlreadyAssigned),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, commands.ErrCartIsEmpty),
		errors.Is(err, commands.ErrMenuItemUnavailable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func (s *Server) forbidden(ctx echo.Context) error {
	return ctx.JSON(http.StatusForbidden, errorResponse{
		Code:    http.StatusForbidden,
		Message: "Insufficient role for this resource",
	})
}

func (s *Server) unauthenticated(ctx echo.Context) error {
	return ctx.JSON(http.StatusUnauthorized, errorResponse{
		Code:    http.StatusUnauthorized,
		Message: "Authentication required",
	})
}
