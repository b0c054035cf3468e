package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderPaid       OrderStatus = "paid"
	OrderCompleted  OrderStatus = "completed"
	OrderCanceled   OrderStatus = "canceled"
)

type PaymentMethod string

const (
	PaymentQRIS         PaymentMethod = "qris"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentEWallet      PaymentMethod = "e_wallet"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRejected  PaymentStatus = "rejected"
)

// MaxNotesLength bounds cart item notes, counted in characters.
const MaxNotesLength = 200

type RestaurantSummary struct {
	ID          int    `json:"id"`
	AreaID      int    `json:"area_id,omitempty"`
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type MenuSummary struct {
	ID           int             `json:"id"`
	RestaurantID int             `json:"restaurant_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	IsAvailable  bool            `json:"is_available"`
}

type CartItem struct {
	ID        int             `json:"id"`
	CartID    int             `json:"cart_id"`
	MenuID    int             `json:"menu_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     *string         `json:"notes"`
	Menu      MenuSummary     `json:"menu"`
}

// Subtotal is always derived from the current quantity, never stored.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i CartItem) NotesText() string {
	if i.Notes == nil {
		return ""
	}
	return *i.Notes
}

type Cart struct {
	ID           int                `json:"id"`
	UserID       int                `json:"user_id"`
	RestaurantID int                `json:"restaurant_id"`
	Items        []CartItem         `json:"items"`
	Restaurant   *RestaurantSummary `json:"restaurant,omitempty"`
}

func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c Cart) RestaurantName() string {
	if c.Restaurant == nil {
		return ""
	}
	return c.Restaurant.Name
}

type OrderItem struct {
	ID        int             `json:"id"`
	MenuID    int             `json:"menu_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes"`
	Menu      *MenuSummary    `json:"menu,omitempty"`
}

type Order struct {
	ID           int                `json:"id"`
	OrderCode    string             `json:"order_code"`
	UserID       int                `json:"user_id"`
	RestaurantID int                `json:"restaurant_id"`
	Restaurant   *RestaurantSummary `json:"restaurant,omitempty"`
	Items        []OrderItem        `json:"items"`
	TotalPrice   decimal.Decimal    `json:"total_price"`
	Status       OrderStatus        `json:"status"`
	Notes        string             `json:"notes"`
	Payment      *Payment           `json:"payment,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

type Payment struct {
	ID            int           `json:"id"`
	OrderID       int           `json:"order_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	ProofImage    string        `json:"proof_image"`
	TransactionID string        `json:"transaction_id"`
	PaidAt        *time.Time    `json:"paid_at"`
	Notes         string        `json:"notes"`
}

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == "admin" || u.Role == "superadmin"
}

// Session is what a successful login hands back.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"-"`
}

type AddItemInput struct {
	MenuID       int    `json:"menu_id"`
	RestaurantID int    `json:"restaurant_id"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes"`
}

type ProofImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

type PaymentConfirmation struct {
	OrderCode     string
	PaymentMethod PaymentMethod
	Proof         ProofImage
	Notes         string
}
