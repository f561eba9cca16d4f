package dto

import "github.com/shopspring/decimal"

// CustomerQuery holds back-office customer listing parameters.
type CustomerQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

// CustomerDetailsResponse is a customer with their order history summary.
type CustomerDetailsResponse struct {
	Customer     UserResponse    `json:"customer"`
	RecentOrders []OrderResponse `json:"recentOrders"`
	TotalOrders  int             `json:"totalOrders"`
	TotalSpent   decimal.Decimal `json:"totalSpent"`
}

// CustomerStatisticsResponse summarises the customer base.
type CustomerStatisticsResponse struct {
	TotalCustomers int `json:"totalCustomers"`
	NewCustomers   int `json:"newCustomers"`
}
