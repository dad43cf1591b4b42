package cmd

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	adapterhttp "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/in/ws"
	"fulfillment/internal/adapters/out/notification"
	"fulfillment/internal/adapters/out/payment"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/metrics"
)

// CompositionRoot wires adapters, handlers, and shared infrastructure.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *slog.Logger
	sink       *metrics.Sink
	hub        *ws.Hub
	gateway    ports.PaymentGateway
	decoder    adapterhttp.CallbackDecoder
	verifier   adapterhttp.SignatureVerifier
	notifier   ports.Notifier
}

// NewCompositionRoot builds the object graph. The payment gateway is chosen
// by PaymentProvider; both providers are constructed lazily enough that only
// the selected one needs credentials.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	sink, err := metrics.NewSink(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("create metrics sink: %w", err)
	}

	root := &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
		sink:       sink,
		hub:        ws.NewHub(logger, sink),
		notifier:   notification.NewPushNotifier(config.PushEndpoint, config.PushAPIKey, logger, sink),
	}

	switch config.PaymentProvider {
	case "phonepe":
		gateway, err := payment.NewPhonePeGateway(payment.PhonePeConfig{
			BaseURL:     config.PhonePeBaseURL,
			MerchantID:  config.PhonePeMerchantID,
			SaltKey:     config.PhonePeSaltKey,
			SaltIndex:   config.PhonePeSaltIndex,
			RedirectURL: config.PhonePeRedirectURL,
			CallbackURL: config.PhonePeCallbackURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create phonepe gateway: %w", err)
		}
		root.gateway = gateway
		root.decoder = gateway
		root.verifier = noSignatureVerifier{}
	case "razorpay":
		gateway, err := payment.NewRazorpayGateway(payment.RazorpayConfig{
			KeyID:       config.RazorpayKeyID,
			KeySecret:   config.RazorpayKeySecret,
			CheckoutURL: config.RazorpayCheckoutURL,
		})
		if err != nil {
			return nil, fmt.Errorf("create razorpay gateway: %w", err)
		}
		root.gateway = gateway
		root.verifier = gateway
		root.decoder = noCallbackDecoder{}
	default:
		return nil, fmt.Errorf("unknown payment provider %q", config.PaymentProvider)
	}

	return root, nil
}

// Hub returns the websocket hub, which doubles as the order event publisher.
func (c *CompositionRoot) Hub() *ws.Hub {
	return c.hub
}

func (c *CompositionRoot) restaurantDirectory() ports.RestaurantDirectory {
	return postgres.NewGormRestaurantDirectory(c.gormDB)
}

func (c *CompositionRoot) menuDirectory() ports.MenuDirectory {
	return postgres.NewGormMenuDirectory(c.gormDB)
}

func (c *CompositionRoot) CreateAddCartLineCommandHandler() commands.AddCartLineCommandHandler {
	var f commands.CartUoWFactory = FuncCartUoWFactory(func() commands.CartUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAddCartLineCommandHandler(f, c.menuDirectory())
}

func (c *CompositionRoot) CreateChangeCartQuantityCommandHandler() commands.ChangeCartQuantityCommandHandler {
	var f commands.CartUoWFactory = FuncCartUoWFactory(func() commands.CartUoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeCartQuantityCommandHandler(f)
}

func (c *CompositionRoot) CreateClearCartCommandHandler() commands.ClearCartCommandHandler {
	var f commands.CartUoWFactory = FuncCartUoWFactory(func() commands.CartUoW {
		return c.uowFactory.Create()
	})
	return commands.NewClearCartCommandHandler(f)
}

func (c *CompositionRoot) CreateCheckoutCommandHandler() commands.CheckoutCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCheckoutCommandHandler(f, c.restaurantDirectory(), c.gateway, c.notifier)
}

func (c *CompositionRoot) CreateDispatchOrderCommandHandler() commands.DispatchOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchOrderCommandHandler(f, c.restaurantDirectory(), c.notifier, c.sink)
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewConfirmPaymentCommandHandler(
		f, c.gateway, c.hub, c.notifier, c.CreateDispatchOrderCommandHandler())
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeOrderStatusCommandHandler(
		f, c.restaurantDirectory(), c.hub, c.notifier, c.CreateDispatchOrderCommandHandler())
}

func (c *CompositionRoot) CreateUpdatePartnerLocationCommandHandler() commands.UpdatePartnerLocationCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdatePartnerLocationCommandHandler(f, c.hub)
}

func (c *CompositionRoot) CreateSetPartnerAvailabilityCommandHandler() commands.SetPartnerAvailabilityCommandHandler {
	var f commands.PartnerUoWFactory = FuncPartnerUoWFactory(func() commands.PartnerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSetPartnerAvailabilityCommandHandler(f)
}

func (c *CompositionRoot) CreateGetCartQueryHandler() queries.GetCartQueryHandler {
	return queries.NewGetCartQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCustomerOrdersQueryHandler() queries.GetCustomerOrdersQueryHandler {
	return queries.NewGetCustomerOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAssignedOrdersQueryHandler() queries.GetAssignedOrdersQueryHandler {
	return queries.NewGetAssignedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPartnerDashboardQueryHandler() queries.GetPartnerDashboardQueryHandler {
	return queries.NewGetPartnerDashboardQueryHandler(c.gormDB)
}

// CreateHTTPServer wires every REST handler.
func (c *CompositionRoot) CreateHTTPServer() *adapterhttp.Server {
	return adapterhttp.NewServer(
		c.CreateAddCartLineCommandHandler(),
		c.CreateChangeCartQuantityCommandHandler(),
		c.CreateClearCartCommandHandler(),
		c.CreateCheckoutCommandHandler(),
		c.CreateConfirmPaymentCommandHandler(),
		c.CreateChangeOrderStatusCommandHandler(),
		c.CreateUpdatePartnerLocationCommandHandler(),
		c.CreateSetPartnerAvailabilityCommandHandler(),
		c.CreateGetCartQueryHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetCustomerOrdersQueryHandler(),
		c.CreateGetAssignedOrdersQueryHandler(),
		c.CreateGetPartnerDashboardQueryHandler(),
		c.decoder,
		c.verifier,
	)
}

// CreateWebsocketHandler wires the real-time channel.
func (c *CompositionRoot) CreateWebsocketHandler() *ws.Handler {
	updater := c.CreateUpdatePartnerLocationCommandHandler()
	return ws.NewHandler(c.hub, updater, c.config.JWTSecret)
}

// CreateJobManager wires the background jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return jobs.NewJobManager(f, c.CreateDispatchOrderCommandHandler(), c.logger)
}

type FuncCartUoWFactory func() commands.CartUoW

func (f FuncCartUoWFactory) Create() commands.CartUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncPartnerUoWFactory func() commands.PartnerUoW

func (f FuncPartnerUoWFactory) Create() commands.PartnerUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// noCallbackDecoder rejects provider callbacks when the wired gateway does
// not use the callback-envelope flow.
type noCallbackDecoder struct{}

func (noCallbackDecoder) DecodeCallback([]byte) (string, error) {
	return "", payment.ErrInvalidCallback
}

// noSignatureVerifier rejects signed callbacks when the wired gateway does
// not use the signature flow.
type noSignatureVerifier struct{}

func (noSignatureVerifier) VerifySignature(string, string, string) error {
	return payment.ErrInvalidCallback
}
