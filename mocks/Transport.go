package mocks

import "github.com/marekbrz/frigidaire/common"
import "github.com/stretchr/testify/mock"

type Transport struct {
	mock.Mock
}

// Do provides a mock function with given fields: req
func (_m *Transport) Do(req *common.Request) (*common.Response, error) {
	ret := _m.Called(req)

	var r0 *common.Response
	if rf, ok := ret.Get(0).(func(*common.Request) *common.Response); ok {
		r0 = rf(req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*common.Response)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(*common.Request) error); ok {
		r1 = rf(req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
