package models

import (
	"fmt"
	"strings"
)

type Review struct {
	ID        string `json:"id"        yaml:"id"`
	ProductID string `json:"productId" yaml:"productId"`
	UserName  string `json:"userName"  yaml:"userName"`
	Rating    int    `json:"rating"    yaml:"rating"`
	Comment   string `json:"comment"   yaml:"comment"`
	Date      string `json:"date"      yaml:"date"`
}

type Product struct {
	ID          string   `json:"id"          yaml:"id"`
	Name        string   `json:"name"        yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       float64  `json:"price"       yaml:"price"`
	Category    string   `json:"category"    yaml:"category"`
	Stock       int      `json:"stock"       yaml:"stock"`
	Image       string   `json:"image"       yaml:"image"`
	Rating      float64  `json:"rating"      yaml:"rating"`
	Reviews     []Review `json:"reviews"     yaml:"reviews"`
	CreatedAt   string   `json:"createdAt"   yaml:"createdAt"`
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	out := p
	out.Reviews = make([]Review, len(p.Reviews))
	copy(out.Reviews, p.Reviews)
	return out
}

type Category struct {
	ID           string `json:"id"           yaml:"id"`
	Name         string `json:"name"         yaml:"name"`
	Description  string `json:"description"  yaml:"description"`
	ProductCount int    `json:"productCount" yaml:"productCount"`
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type OrderLine struct {
	ProductID   string  `json:"productId"   yaml:"productId"`
	ProductName string  `json:"productName" yaml:"productName"`
	Quantity    int     `json:"quantity"    yaml:"quantity"`
	Price       float64 `json:"price"       yaml:"price"`
}

type Order struct {
	ID            string      `json:"id"            yaml:"id"`
	CustomerName  string      `json:"customerName"  yaml:"customerName"`
	CustomerEmail string      `json:"customerEmail" yaml:"customerEmail"`
	Products      []OrderLine `json:"products"      yaml:"products"`
	Total         float64     `json:"total"         yaml:"total"`
	Status        OrderStatus `json:"status"        yaml:"status"`
	OrderDate     string      `json:"orderDate"     yaml:"orderDate"`
}

func (o Order) Clone() Order {
	out := o
	out.Products = make([]OrderLine, len(o.Products))
	copy(out.Products, o.Products)
	return out
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type Customer struct {
	ID       string `json:"id"       yaml:"id"`
	Email    string `json:"email"    yaml:"email"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name"     yaml:"name"`
}

type AdminUser struct {
	ID       string `json:"id"       yaml:"id"`
	Email    string `json:"email"    yaml:"email"`
	Password string `json:"password" yaml:"password"`
	Name     string `json:"name"     yaml:"name"`
	Role     string `json:"role"     yaml:"role"`
}

const RoleAdmin = "admin"

type SalesPoint struct {
	Month    string `json:"month"    yaml:"month"`
	Sales    int    `json:"sales"    yaml:"sales"`
	Products int    `json:"products" yaml:"products"`
}

type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
)

const LowStockThreshold = 20

func StockStatusOf(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockOut
	case stock < LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}
