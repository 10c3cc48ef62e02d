package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignUpProblems(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		userName string
		want     []string
	}{
		{name: "valid", email: " Ann@Example.com ", password: "password1", userName: "Ann"},
		{name: "all missing", want: []string{"email is required", "password is required", "name is required"}},
		{name: "bad email short password", email: "ann@", password: "short", userName: "Ann",
			want: []string{"invalid email format", "password must be at least 8 characters"}},
		{name: "blank name", email: "ann@example.com", password: "password1", userName: "   ", want: []string{"name is required"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignUpProblems(tt.email, tt.password, tt.userName))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@example.com", NormalizeEmail("  ANN@Example.COM "))
}
