package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicy_Default(t *testing.T) {
	policy, err := LoadPolicy("", "/api/v1")
	require.NoError(t, err)
	require.NotNil(t, policy.AdminOnly)
	assert.True(t, *policy.AdminOnly)

	tests := []struct {
		method string
		path   string
		public bool
	}{
		{"GET", "/public/uploads/phone-abc.png", true},
		{"GET", "/api/v1/products", true},
		{"GET", "/api/v1/products/get/featured/3", true},
		{"POST", "/api/v1/products", false},
		{"DELETE", "/api/v1/products/123", false},
		{"GET", "/api/v1/categories/123", true},
		{"PUT", "/api/v1/categories/123", false},
		{"POST", "/api/v1/users/login", true},
		{"POST", "/api/v1/users/register", true},
		{"GET", "/api/v1/users", false},
		{"GET", "/api/v1/orders", false},
		{"GET", "/health", true},
		{"POST", "/api/v1/users/login/", true},
		{"GET", "/api/v2/products", false},
		{"GET", "/api/v1/productsx", false},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.public, policy.IsPublic(tt.method, tt.path))
		})
	}

	assert.False(t, policy.AllowsUser("POST", "/api/v1/orders"), "customers are locked out while adminOnly is set")
}

func TestDefaultPolicy_UserRulesAcceptTrailingSlash(t *testing.T) {
	policy, err := ParsePolicy(defaultPolicy, "/api/v1")
	require.NoError(t, err)
	customers := false
	policy.AdminOnly = &customers

	tests := []struct {
		method string
		path   string
		want   bool
	}{
		{"POST", "/api/v1/orders", true},
		{"POST", "/api/v1/orders/", true},
		{"POST", "/api/v1/orders/create-checkout-session/", true},
		{"GET", "/api/v1/orders/get/userorders/abc/", true},
		{"GET", "/api/v1/orders/", false},
		{"POST", "/api/v1/orders//", false},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.AllowsUser(tt.method, tt.path))
		})
	}
}

func TestParsePolicy_UserRules(t *testing.T) {
	yaml := `
public:
  - path: ^{api}/users/login$
adminOnly: false
user:
  - path: ^{api}/orders$
    methods: [post]
`
	policy, err := ParsePolicy([]byte(yaml), "/shop/api/")
	require.NoError(t, err)

	assert.True(t, policy.IsPublic("POST", "/shop/api/users/login"))
	assert.True(t, policy.AllowsUser("POST", "/shop/api/orders"))
	assert.False(t, policy.AllowsUser("GET", "/shop/api/orders"))
	assert.False(t, policy.AllowsUser("POST", "/shop/api/orders/123"))
}

func TestParsePolicy_Errors(t *testing.T) {
	_, err := ParsePolicy([]byte("public: [path: oops"), "/api/v1")
	assert.Error(t, err)

	_, err = ParsePolicy([]byte("public:\n  - path: \"^{api}/(unclosed$\"\n"), "/api/v1")
	assert.ErrorContains(t, err, "invalid access rule")

	_, err = LoadPolicy("/does/not/exist.yaml", "/api/v1")
	assert.Error(t, err)
}
