// Package mocks provides test doubles for the yelp client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	yelp "github.com/Black-Wealth-Data-Center/bwdc-kwk/pkg/yelp"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Search provides a mock function with given fields: ctx, p
func (_m *MockClient) Search(ctx context.Context, p yelp.SearchParams) (*yelp.SearchResponse, error) {
	ret := _m.Called(ctx, p)

	if len(ret) == 0 {
		panic("no return value specified for Search")
	}

	var r0 *yelp.SearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, yelp.SearchParams) (*yelp.SearchResponse, error)); ok {
		return rf(ctx, p)
	}
	if rf, ok := ret.Get(0).(func(context.Context, yelp.SearchParams) *yelp.SearchResponse); ok {
		r0 = rf(ctx, p)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*yelp.SearchResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, yelp.SearchParams) error); ok {
		r1 = rf(ctx, p)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
