// Package mocks holds test doubles shared across packages.
//
// TaskStore and UserStore are testify mocks; set expectations with On and
// check them with AssertExpectations. MockJWTService, MockPasswordHasher and
// MockEventEmitter are plain structs whose fields configure results:
//
//	jwt := &mocks.MockJWTService{
//	    Claims: &auth.Claims{UserID: id, Role: domain.RoleUser},
//	}
package mocks
