package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-property-booking/internal/application"
	"github.com/sanosuguru/go-property-booking/internal/domain/booking"
	"github.com/sanosuguru/go-property-booking/internal/domain/property"
	"github.com/sanosuguru/go-property-booking/internal/domain/user"
)

// MockBookingService は BookingServiceInterface のモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) RequestBooking(ctx context.Context, caller application.Caller, propertyID string, dateIn, dateOut time.Time) (*booking.Booking, error) {
	args := m.Called(ctx, caller, propertyID, dateIn, dateOut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) ListBookingsForGuest(ctx context.Context, caller application.Caller) ([]application.BookingWithProperty, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.BookingWithProperty), args.Error(1)
}

func (m *MockBookingService) ListBookingsForProperty(ctx context.Context, caller application.Caller, propertyID string) ([]*booking.Booking, error) {
	args := m.Called(ctx, caller, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CheckAvailability(ctx context.Context, propertyID string, dateIn, dateOut time.Time) (bool, error) {
	args := m.Called(ctx, propertyID, dateIn, dateOut)
	return args.Bool(0), args.Error(1)
}

// MockPropertyService は PropertyServiceInterface のモック
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) CreateProperty(ctx context.Context, caller application.Caller, input application.CreatePropertyInput) (*property.Property, error) {
	args := m.Called(ctx, caller, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyService) GetProperty(ctx context.Context, id string) (*property.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Property), args.Error(1)
}

func (m *MockPropertyService) ListProperties(ctx context.Context, limit, offset int) ([]*property.Property, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*property.Property), args.Error(1)
}

func (m *MockPropertyService) ListMyProperties(ctx context.Context, caller application.Caller) ([]*property.Property, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*property.Property), args.Error(1)
}

func (m *MockPropertyService) DeleteProperty(ctx context.Context, caller application.Caller, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockPropertyService) GetSnapshot(ctx context.Context, id string) (property.Snapshot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(property.Snapshot), args.Error(1)
}

// MockUserService は UserServiceInterface のモック
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Signup(ctx context.Context, input application.SignupInput) (*user.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*application.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.LoginResult), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}
