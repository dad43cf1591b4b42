package http

import (
	"time"

	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/cart"
	"fulfillment/internal/core/domain/model/order"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type addCartItemRequest struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

type changeCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	Street        string  `json:"street"`
	City          string  `json:"city"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	PaymentMethod string  `json:"paymentMethod"`
}

type changeOrderStatusRequest struct {
	Status string `json:"status"`
}

type verifyPaymentRequest struct {
	Reference string `json:"reference"`
}

type razorpayCallbackRequest struct {
	OrderID   string `json:"razorpayOrderId"`
	PaymentID string `json:"razorpayPaymentId"`
	Signature string `json:"razorpaySignature"`
}

type updateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type setAvailabilityRequest struct {
	Available bool `json:"available"`
}

type cartLineJSON struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
	Subtotal   float64 `json:"subtotal"`
}

type billJSON struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"deliveryFee"`
	Total       float64 `json:"total"`
}

type cartJSON struct {
	CustomerID   string         `json:"customerId"`
	RestaurantID *string        `json:"restaurantId"`
	Lines        []cartLineJSON `json:"items"`
	Bill         billJSON       `json:"bill"`
}

type orderItemJSON struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
	Subtotal   float64 `json:"subtotal"`
}

type addressJSON struct {
	Street    string  `json:"street"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type orderJSON struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customerId"`
	RestaurantID    string          `json:"restaurantId"`
	Items           []orderItemJSON `json:"items"`
	Bill            billJSON        `json:"bill"`
	DeliveryAddress addressJSON     `json:"deliveryAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `json:"paymentStatus"`
	Status          string          `json:"status"`
	PartnerID       *string         `json:"partnerId"`
	PartnerEarnings *float64        `json:"partnerEarnings,omitempty"`
	CreatedAt       time.Time       `json:"createdAt,omitzero"`
}

type checkoutResponseJSON struct {
	Order      orderJSON `json:"order"`
	PaymentURL string    `json:"paymentUrl,omitempty"`
}

type dashboardJSON struct {
	PartnerID       string  `json:"partnerId"`
	IsAvailable     bool    `json:"isAvailable"`
	Rating          float64 `json:"rating"`
	EarningsTotal   float64 `json:"earningsTotal"`
	TotalDeliveries int     `json:"totalDeliveries"`
	TodayEarnings   float64 `json:"todayEarnings"`
	TodayDeliveries int     `json:"todayDeliveries"`
	ActiveOrders    int     `json:"activeOrders"`
}

func toCartJSON(aggregate *cart.Cart) cartJSON {
	lines := aggregate.Lines()
	items := make([]cartLineJSON, len(lines))
	for i, line := range lines {
		items[i] = cartLineJSON{
			MenuItemID: line.MenuItemID().String(),
			Name:       line.Name(),
			UnitPrice:  line.UnitPrice(),
			Quantity:   line.Quantity(),
			Subtotal:   line.Subtotal(),
		}
	}

	var restaurantID *string
	if id := aggregate.RestaurantID(); id != nil {
		s := id.String()
		restaurantID = &s
	}

	return cartJSON{
		CustomerID:   aggregate.CustomerID().String(),
		RestaurantID: restaurantID,
		Lines:        items,
		Bill:         toBillJSON(aggregate.Bill()),
	}
}

func toCartQueryJSON(response queries.GetCartQueryResponse) cartJSON {
	items := make([]cartLineJSON, len(response.Lines))
	for i, line := range response.Lines {
		items[i] = cartLineJSON{
			MenuItemID: line.MenuItemID.String(),
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			Subtotal:   line.Subtotal,
		}
	}

	var restaurantID *string
	if response.RestaurantID != nil {
		s := response.RestaurantID.String()
		restaurantID = &s
	}

	return cartJSON{
		CustomerID:   response.CustomerID.String(),
		RestaurantID: restaurantID,
		Lines:        items,
		Bill:         toBillJSON(response.Bill),
	}
}

func toBillJSON(bill cart.Bill) billJSON {
	return billJSON{
		Subtotal:    bill.Subtotal,
		Tax:         bill.Tax,
		DeliveryFee: bill.DeliveryFee,
		Total:       bill.Total,
	}
}

func toOrderJSON(aggregate *order.Order) orderJSON {
	orderItems := aggregate.Items()
	items := make([]orderItemJSON, len(orderItems))
	for i, item := range orderItems {
		items[i] = orderItemJSON{
			MenuItemID: item.MenuItemID().String(),
			Name:       item.Name(),
			UnitPrice:  item.UnitPrice(),
			Quantity:   item.Quantity(),
			Subtotal:   item.Subtotal(),
		}
	}

	var partnerID *string
	if id := aggregate.Partner(); id != nil {
		s := id.String()
		partnerID = &s
	}

	address := aggregate.DeliveryAddress()
	amounts := aggregate.Amounts()

	return orderJSON{
		ID:           aggregate.ID().String(),
		CustomerID:   aggregate.CustomerID().String(),
		RestaurantID: aggregate.RestaurantID().String(),
		Items:        items,
		Bill: billJSON{
			Subtotal:    amounts.Subtotal,
			Tax:         amounts.Tax,
			DeliveryFee: amounts.DeliveryFee,
			Total:       amounts.Total,
		},
		DeliveryAddress: addressJSON{
			Street:    address.Street(),
			City:      address.City(),
			Latitude:  address.Location().Latitude(),
			Longitude: address.Location().Longitude(),
		},
		PaymentMethod:   aggregate.PaymentMethod(),
		PaymentStatus:   aggregate.PaymentStatus().String(),
		Status:          aggregate.Status().String(),
		PartnerID:       partnerID,
		PartnerEarnings: aggregate.PartnerEarnings(),
	}
}

func toOrderQueryJSON(response queries.OrderResponse) orderJSON {
	items := make([]orderItemJSON, len(response.Items))
	for i, item := range response.Items {
		items[i] = orderItemJSON{
			MenuItemID: item.MenuItemID.String(),
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			Subtotal:   item.Subtotal,
		}
	}

	var partnerID *string
	if response.PartnerID != nil {
		s := response.PartnerID.String()
		partnerID = &s
	}

	return orderJSON{
		ID:           response.ID.String(),
		CustomerID:   response.CustomerID.String(),
		RestaurantID: response.RestaurantID.String(),
		Items:        items,
		Bill: billJSON{
			Subtotal:    response.Subtotal,
			Tax:         response.Tax,
			DeliveryFee: response.DeliveryFee,
			Total:       response.Total,
		},
		DeliveryAddress: addressJSON{
			Street:    response.Street,
			City:      response.City,
			Latitude:  response.Latitude,
			Longitude: response.Longitude,
		},
		PaymentMethod:   response.PaymentMethod,
		PaymentStatus:   response.PaymentStatus,
		Status:          response.Status,
		PartnerID:       partnerID,
		PartnerEarnings: response.PartnerEarnings,
		CreatedAt:       response.CreatedAt,
	}
}

func toOrderQueryListJSON(responses []queries.OrderResponse) []orderJSON {
	out := make([]orderJSON, len(responses))
	for i, response := range responses {
		out[i] = toOrderQueryJSON(response)
	}
	return out
}

func toDashboardJSON(response queries.GetPartnerDashboardQueryResponse) dashboardJSON {
	return dashboardJSON{
		PartnerID:       response.PartnerID.String(),
		IsAvailable:     response.IsAvailable,
		Rating:          response.Rating,
		EarningsTotal:   response.EarningsTotal,
		TotalDeliveries: response.TotalDeliveries,
		TodayEarnings:   response.TodayEarnings,
		TodayDeliveries: response.TodayDeliveries,
		ActiveOrders:    response.ActiveOrders,
	}
}
