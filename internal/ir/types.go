package ir

// Category groups menu items on the customer menu.
type Category string

const (
	CategoryCoffee     Category = "Coffee"
	CategoryNonCoffee  Category = "Non-Coffee"
	CategorySnacks     Category = "Snacks"
	CategoryEvent      Category = "Event"
	CategoryBestSeller Category = "Best Seller"
)

// ValidCategories defines the allowed menu categories.
var ValidCategories = map[Category]bool{
	CategoryCoffee:     true,
	CategoryNonCoffee:  true,
	CategorySnacks:     true,
	CategoryEvent:      true,
	CategoryBestSeller: true,
}

// IsDrink reports whether items of this category take drink options
// (sugar, ice, extra shot).
func (c Category) IsDrink() bool {
	switch c {
	case CategoryCoffee, CategoryNonCoffee, CategoryBestSeller, CategoryEvent:
		return true
	default:
		return false
	}
}

// SugarLevel is one of five fixed sweetness tiers.
type SugarLevel string

const (
	Sugar0   SugarLevel = "0%"
	Sugar25  SugarLevel = "25%"
	Sugar50  SugarLevel = "50%"
	Sugar75  SugarLevel = "75%"
	Sugar100 SugarLevel = "100%"
)

// ValidSugarLevels defines the allowed sugar tiers.
var ValidSugarLevels = map[SugarLevel]bool{
	Sugar0: true, Sugar25: true, Sugar50: true, Sugar75: true, Sugar100: true,
}

// IceLevel is one of four fixed ice tiers.
type IceLevel string

const (
	IceNone   IceLevel = "No Ice"
	IceLess   IceLevel = "Less"
	IceNormal IceLevel = "Normal"
	IceExtra  IceLevel = "Extra"
)

// ValidIceLevels defines the allowed ice tiers.
var ValidIceLevels = map[IceLevel]bool{
	IceNone: true, IceLess: true, IceNormal: true, IceExtra: true,
}

// PaymentMethod tags how the table intends to pay. No payment is processed.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentQRIS PaymentMethod = "qris"
)

// ValidPaymentMethods defines the allowed payment tags.
var ValidPaymentMethods = map[PaymentMethod]bool{
	PaymentCash: true,
	PaymentQRIS: true,
}

// ExtraShotSurcharge is added to a drink's line price when an extra
// espresso shot is requested.
const ExtraShotSurcharge int64 = 5000

// MenuItem is one orderable product.
type MenuItem struct {
	ID           string   `json:"id"`
	NameEN       string   `json:"name_en"`
	NameID       string   `json:"name_id"`
	Price        int64    `json:"price"`
	Category     Category `json:"category"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	HealthyScore int      `json:"healthyScore"`
	Ingredients  []string `json:"ingredients"`
	IsAvailable  bool     `json:"isAvailable"`
}

// CartItem is a frozen MenuItem snapshot plus the options chosen for it.
// Price already includes any extra-shot surcharge.
type CartItem struct {
	MenuItem
	CartID     string     `json:"cartId"`
	Quantity   int        `json:"quantity"`
	SugarLevel SugarLevel `json:"sugarLevel"`
	IceLevel   IceLevel   `json:"iceLevel"`
	ExtraShot  bool       `json:"extraShot"`
	Notes      string     `json:"notes,omitempty"`
}

// LineTotal returns price × quantity.
func (c CartItem) LineTotal() int64 {
	return c.Price * int64(c.Quantity)
}

// Order is a placed, immutable set of line items for one table.
// Only Status changes after creation.
type Order struct {
	ID            string        `json:"id"`
	TableNumber   int           `json:"tableNumber"`
	Items         []CartItem    `json:"items"`
	TotalAmount   int64         `json:"totalAmount"`
	Status        OrderStatus   `json:"status"`
	Timestamp     int64         `json:"timestamp"` // Unix milliseconds
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// EventConfig is the singleton event-mode configuration.
type EventConfig struct {
	IsActive           bool   `json:"isActive"`
	EventName          string `json:"eventName"`
	TableCount         int    `json:"tableCount"`
	DiscountPercentage int    `json:"discountPercentage"`
}

// DefaultEventConfig is the configuration used when nothing is cached locally.
func DefaultEventConfig() EventConfig {
	return EventConfig{
		IsActive:           false,
		EventName:          "Grand Opening",
		TableCount:         10,
		DiscountPercentage: 0,
	}
}
