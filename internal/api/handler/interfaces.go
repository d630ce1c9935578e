package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-property-booking/internal/application"
	"github.com/sanosuguru/go-property-booking/internal/domain/booking"
	"github.com/sanosuguru/go-property-booking/internal/domain/property"
	"github.com/sanosuguru/go-property-booking/internal/domain/user"
)

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	RequestBooking(ctx context.Context, caller application.Caller, propertyID string, dateIn, dateOut time.Time) (*booking.Booking, error)
	ListBookingsForGuest(ctx context.Context, caller application.Caller) ([]application.BookingWithProperty, error)
	ListBookingsForProperty(ctx context.Context, caller application.Caller, propertyID string) ([]*booking.Booking, error)
	CheckAvailability(ctx context.Context, propertyID string, dateIn, dateOut time.Time) (bool, error)
}

// PropertyServiceInterface は物件サービスのインターフェース
type PropertyServiceInterface interface {
	CreateProperty(ctx context.Context, caller application.Caller, input application.CreatePropertyInput) (*property.Property, error)
	GetProperty(ctx context.Context, id string) (*property.Property, error)
	ListProperties(ctx context.Context, limit, offset int) ([]*property.Property, error)
	ListMyProperties(ctx context.Context, caller application.Caller) ([]*property.Property, error)
	DeleteProperty(ctx context.Context, caller application.Caller, id string) error
	GetSnapshot(ctx context.Context, id string) (property.Snapshot, error)
}

// UserServiceInterface はユーザーサービスのインターフェース
type UserServiceInterface interface {
	Signup(ctx context.Context, input application.SignupInput) (*user.User, error)
	Login(ctx context.Context, email, password string) (*application.LoginResult, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
}
