package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderStatusInquiry        = "inquiry"
	OrderStatusQuoteSent      = "quote_sent"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusInProgress     = "in_progress"
	OrderStatusReadyForPickup = "ready_for_pickup"
	OrderStatusCompleted      = "completed"
	OrderStatusCancelled      = "cancelled"
	OrderStatusNewOnline      = "new_online"
)

// Payment statuses
const (
	PaymentStatusUnpaid      = "unpaid"
	PaymentStatusDepositPaid = "deposit_paid"
	PaymentStatusPaidInFull  = "paid_in_full"
	PaymentStatusRefunded    = "refunded"
)

// Quote statuses
const (
	QuoteStatusDraft     = "draft"
	QuoteStatusSent      = "sent"
	QuoteStatusAccepted  = "accepted"
	QuoteStatusDeclined  = "declined"
	QuoteStatusExpired   = "expired"
	QuoteStatusConverted = "converted"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusInquiry, OrderStatusQuoteSent, OrderStatusConfirmed,
		OrderStatusInProgress, OrderStatusReadyForPickup, OrderStatusCompleted,
		OrderStatusCancelled, OrderStatusNewOnline:
		return true
	}
	return false
}

// ValidQuoteStatus reports whether s is a known quote status.
func ValidQuoteStatus(s string) bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted,
		QuoteStatusDeclined, QuoteStatusExpired, QuoteStatusConverted:
		return true
	}
	return false
}

// Order represents a customer order. Monetary fields are computed at
// creation and whenever items or deposit change, never lazily on read.
type Order struct {
	ID              uuid.UUID           `db:"id" json:"id"`
	OwnerID         uuid.UUID           `db:"owner_id" json:"owner_id"`
	OrderNumber     string              `db:"order_number" json:"order_number"`
	Status          string              `db:"status" json:"status"`
	PaymentStatus   string              `db:"payment_status" json:"payment_status"`
	OrderDate       time.Time           `db:"order_date" json:"order_date"`
	DueDate         time.Time           `db:"due_date" json:"due_date"`
	DeliveryMethod  string              `db:"delivery_method" json:"delivery_method,omitempty"`
	Subtotal        decimal.Decimal     `db:"subtotal" json:"subtotal"`
	Tax             decimal.Decimal     `db:"tax" json:"tax"`
	TotalAmount     decimal.Decimal     `db:"total_amount" json:"total_amount"`
	DepositAmount   decimal.NullDecimal `db:"deposit_amount" json:"deposit_amount,omitempty"`
	BalanceDue      decimal.Decimal     `db:"balance_due" json:"balance_due"`
	DepositDueDate  *time.Time          `db:"deposit_due_date" json:"deposit_due_date,omitempty"`
	BalanceDueDate  *time.Time          `db:"balance_due_date" json:"balance_due_date,omitempty"`
	NotesToCustomer string              `db:"notes_to_customer" json:"notes_to_customer,omitempty"`
	InternalNotes   string              `db:"internal_notes" json:"internal_notes,omitempty"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updated_at"`

	Items []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem is one line of an order. UnitCost snapshots the linked
// recipe's calculated cost at the time the item was created; the P&L
// report sums it as cost of goods sold.
type OrderItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OrderID     uuid.UUID       `db:"order_id" json:"order_id"`
	RecipeID    *uuid.UUID      `db:"recipe_id" json:"recipe_id,omitempty"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description,omitempty"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"total_price"`
	UnitCost    decimal.Decimal `db:"unit_cost" json:"unit_cost"`
}

// Quote mirrors Order before confirmation. No deposit or balance.
type Quote struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	OwnerID            uuid.UUID       `db:"owner_id" json:"owner_id"`
	QuoteNumber        string          `db:"quote_number" json:"quote_number"`
	Status             string          `db:"status" json:"status"`
	QuoteDate          time.Time       `db:"quote_date" json:"quote_date"`
	ExpiryDate         *time.Time      `db:"expiry_date" json:"expiry_date,omitempty"`
	Notes              string          `db:"notes" json:"notes,omitempty"`
	Subtotal           decimal.Decimal `db:"subtotal" json:"subtotal"`
	Tax                decimal.Decimal `db:"tax" json:"tax"`
	TotalAmount        decimal.Decimal `db:"total_amount" json:"total_amount"`
	ConvertedToOrderID *uuid.UUID      `db:"converted_to_order_id" json:"converted_to_order_id,omitempty"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`

	Items []QuoteItem `db:"-" json:"items,omitempty"`
}

// QuoteItem is one line of a quote.
type QuoteItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	QuoteID     uuid.UUID       `db:"quote_id" json:"quote_id"`
	RecipeID    *uuid.UUID      `db:"recipe_id" json:"recipe_id,omitempty"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description,omitempty"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"total_price"`
}

// Expense categories
const (
	ExpenseCategoryIngredients = "ingredients"
	ExpenseCategorySupplies    = "supplies"
	ExpenseCategoryUtilities   = "utilities"
	ExpenseCategoryRent        = "rent"
	ExpenseCategoryMarketing   = "marketing"
	ExpenseCategoryFees        = "fees"
	ExpenseCategoryOther       = "other"
)

// ValidExpenseCategory reports whether c is a known expense category.
func ValidExpenseCategory(c string) bool {
	switch c {
	case ExpenseCategoryIngredients, ExpenseCategorySupplies, ExpenseCategoryUtilities,
		ExpenseCategoryRent, ExpenseCategoryMarketing, ExpenseCategoryFees,
		ExpenseCategoryOther:
		return true
	}
	return false
}

// Expense is a recorded operating expense. Read-only input to reporting.
type Expense struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OwnerID     uuid.UUID       `db:"owner_id" json:"owner_id"`
	Date        time.Time       `db:"date" json:"date"`
	Description string          `db:"description" json:"description"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Category    string          `db:"category" json:"category"`
	Vendor      string          `db:"vendor" json:"vendor,omitempty"`
	Notes       string          `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
