package events

import "github.com/Skotchmaster/storefront/internal/models"

const (
	TopicProduct  = "product_events"
	TopicCategory = "category_events"
	TopicOrder    = "order_events"
	TopicCart     = "cart_events"
	TopicWishlist = "wishlist_events"
	TopicSession  = "session_events"
	TopicCheckout = "checkout_events"
)

// Topics lists every topic a dispatcher may publish to.
var Topics = []string{
	TopicProduct, TopicCategory, TopicOrder, TopicCart,
	TopicWishlist, TopicSession, TopicCheckout,
}

type ProductCreated struct {
	Product models.Product `json:"product"`
}

func (ProductCreated) Type() string  { return "product_created" }
func (ProductCreated) Topic() string { return TopicProduct }
func (e ProductCreated) Key() string { return e.Product.ID }

type ProductUpdated struct {
	Product models.Product `json:"product"`
}

func (ProductUpdated) Type() string  { return "product_updated" }
func (ProductUpdated) Topic() string { return TopicProduct }
func (e ProductUpdated) Key() string { return e.Product.ID }

type ProductDeleted struct {
	ProductID string `json:"productId"`
}

func (ProductDeleted) Type() string  { return "product_deleted" }
func (ProductDeleted) Topic() string { return TopicProduct }
func (e ProductDeleted) Key() string { return e.ProductID }

type CategoryCreated struct {
	Category models.Category `json:"category"`
}

func (CategoryCreated) Type() string  { return "category_created" }
func (CategoryCreated) Topic() string { return TopicCategory }
func (e CategoryCreated) Key() string { return e.Category.ID }

type CategoryUpdated struct {
	Category        models.Category `json:"category"`
	OldName         string          `json:"oldName"`
	NewName         string          `json:"newName"`
	ProductsRenamed int             `json:"productsRenamed"`
}

func (CategoryUpdated) Type() string  { return "category_updated" }
func (CategoryUpdated) Topic() string { return TopicCategory }
func (e CategoryUpdated) Key() string { return e.Category.ID }

type CategoryDeleted struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
}

func (CategoryDeleted) Type() string  { return "category_deleted" }
func (CategoryDeleted) Topic() string { return TopicCategory }
func (e CategoryDeleted) Key() string { return e.CategoryID }

type OrderStatusChanged struct {
	OrderID string             `json:"orderId"`
	From    models.OrderStatus `json:"from"`
	To      models.OrderStatus `json:"to"`
}

func (OrderStatusChanged) Type() string  { return "order_status_changed" }
func (OrderStatusChanged) Topic() string { return TopicOrder }
func (e OrderStatusChanged) Key() string { return e.OrderID }

type OrderDeleted struct {
	OrderID string `json:"orderId"`
}

func (OrderDeleted) Type() string  { return "order_deleted" }
func (OrderDeleted) Topic() string { return TopicOrder }
func (e OrderDeleted) Key() string { return e.OrderID }

type CartItemAdded struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

func (CartItemAdded) Type() string  { return "cart_item_added" }
func (CartItemAdded) Topic() string { return TopicCart }
func (e CartItemAdded) Key() string { return e.ProductID }

type CartItemUpdated struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (CartItemUpdated) Type() string  { return "cart_item_updated" }
func (CartItemUpdated) Topic() string { return TopicCart }
func (e CartItemUpdated) Key() string { return e.ProductID }

type CartItemRemoved struct {
	ProductID string `json:"productId"`
}

func (CartItemRemoved) Type() string  { return "cart_item_removed" }
func (CartItemRemoved) Topic() string { return TopicCart }
func (e CartItemRemoved) Key() string { return e.ProductID }

type CartCleared struct {
	Items int `json:"items"`
}

func (CartCleared) Type() string  { return "cart_cleared" }
func (CartCleared) Topic() string { return TopicCart }
func (CartCleared) Key() string   { return "cart" }

type WishlistItemAdded struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
}

func (WishlistItemAdded) Type() string  { return "wishlist_item_added" }
func (WishlistItemAdded) Topic() string { return TopicWishlist }
func (e WishlistItemAdded) Key() string { return e.ProductID }

type WishlistItemRemoved struct {
	ProductID string `json:"productId"`
}

func (WishlistItemRemoved) Type() string  { return "wishlist_item_removed" }
func (WishlistItemRemoved) Topic() string { return TopicWishlist }
func (e WishlistItemRemoved) Key() string { return e.ProductID }

type WishlistCleared struct {
	Items int `json:"items"`
}

func (WishlistCleared) Type() string  { return "wishlist_cleared" }
func (WishlistCleared) Topic() string { return TopicWishlist }
func (WishlistCleared) Key() string   { return "wishlist" }

type LoginSucceeded struct {
	Realm     string `json:"realm"`
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
}

func (LoginSucceeded) Type() string  { return "login_succeeded" }
func (LoginSucceeded) Topic() string { return TopicSession }
func (e LoginSucceeded) Key() string { return e.AccountID }

type LoginFailed struct {
	Realm string `json:"realm"`
	Email string `json:"email"`
}

func (LoginFailed) Type() string  { return "login_failed" }
func (LoginFailed) Topic() string { return TopicSession }
func (e LoginFailed) Key() string { return e.Email }

type SignedUp struct {
	Realm     string `json:"realm"`
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
}

func (SignedUp) Type() string  { return "signed_up" }
func (SignedUp) Topic() string { return TopicSession }
func (e SignedUp) Key() string { return e.AccountID }

type LoggedOut struct {
	Realm     string `json:"realm"`
	AccountID string `json:"accountId"`
}

func (LoggedOut) Type() string  { return "logged_out" }
func (LoggedOut) Topic() string { return TopicSession }
func (e LoggedOut) Key() string { return e.AccountID }

type OrderPlaced struct {
	ConfirmationID string  `json:"confirmationId"`
	Email          string  `json:"email"`
	Items          int     `json:"items"`
	Subtotal       float64 `json:"subtotal"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
	PaymentMethod  string  `json:"paymentMethod"`
}

func (OrderPlaced) Type() string  { return "order_placed" }
func (OrderPlaced) Topic() string { return TopicCheckout }
func (e OrderPlaced) Key() string { return e.ConfirmationID }
