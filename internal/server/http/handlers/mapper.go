package handlers

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Addresses: toAddressResponses(u.Addresses),
		CreatedAt: u.CreatedAt,
	}
}

func toAddressResponses(book model.AddressBook) []dto.AddressResponse {
	out := make([]dto.AddressResponse, 0, len(book))
	for _, a := range book {
		out = append(out, dto.AddressResponse{
			ID:        a.ID,
			Street:    a.Street,
			City:      a.City,
			State:     a.State,
			ZipCode:   a.ZipCode,
			Country:   a.Country,
			IsDefault: a.IsDefault,
		})
	}
	return out
}

func toUserResponses(users []model.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

func toCategoryResponse(c *model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Image:       c.Image,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCategoryResponses(categories []model.Category) []dto.CategoryResponse {
	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}
	return out
}

func toCustomerDetailsResponse(d *model.CustomerDetails) dto.CustomerDetailsResponse {
	return dto.CustomerDetailsResponse{
		Customer:     toUserResponse(&d.Customer),
		RecentOrders: toOrderResponses(d.RecentOrders),
		TotalOrders:  d.TotalOrders,
		TotalSpent:   d.TotalSpent,
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Category:       p.Category,
		Images:         p.Images,
		Stock:          p.Stock,
		SKU:            p.SKU,
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		AverageRating:  p.AverageRating,
		TotalReviews:   p.TotalReviews,
		TotalOrders:    p.TotalOrders,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for _, r := range p.Reviews {
		resp.Reviews = append(resp.Reviews, dto.ReviewResponse{
			ID:        r.ID,
			UserID:    r.UserID,
			UserName:  r.UserName,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return resp
}

func toProductResponses(products []model.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			Product:  it.ProductID,
			Name:     it.ProductName,
			Image:    it.ProductImage,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    it.Total,
		})
	}
	a := o.ShippingAddress
	return dto.OrderResponse{
		ID:          o.ID,
		OrderNumber: o.Number,
		User:        o.UserID,
		Items:       items,
		ShippingAddress: dto.ShippingAddress{
			Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country,
		},
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		OrderStatus:   string(o.OrderStatus),
		Subtotal:      o.Subtotal,
		Tax:           o.Tax,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

func toOrderStatisticsResponse(s *model.OrderStatistics) dto.OrderStatisticsResponse {
	dist := make(map[string]int, len(s.StatusDistribution))
	for status, n := range s.StatusDistribution {
		dist[string(status)] = n
	}
	trend := make([]dto.SalesPointResponse, 0, len(s.SalesTrend))
	for _, p := range s.SalesTrend {
		trend = append(trend, dto.SalesPointResponse{Day: p.Day.Format(time.DateOnly), Sales: p.Sales, Orders: p.Orders})
	}
	return dto.OrderStatisticsResponse{
		TotalOrders:        s.TotalOrders,
		Pending:            s.Pending,
		Processing:         s.Processing,
		Shipped:            s.Shipped,
		Delivered:          s.Delivered,
		Cancelled:          s.Cancelled,
		TotalSales:         s.TotalSales,
		RecentOrders:       toOrderResponses(s.RecentOrders),
		StatusDistribution: dist,
		SalesTrend:         trend,
	}
}
