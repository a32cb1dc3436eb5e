// Package mocks provides shared mock implementations for tests.
//
// Two styles live here. Function-field mocks (MockJWTService,
// MockJobTokenChecker) return fixed values unless a Fn field overrides the
// behavior:
//
//	jwtSvc := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserID: userID}, nil
//	    },
//	}
//
// Testify mocks (TestifyMock*) embed mock.Mock and are driven with On/Return
// when a test needs to assert call arguments.
package mocks
