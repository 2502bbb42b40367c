package dto

import (
	"testing"
)

func TestRegisterRequest_ValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid password", "Password1", true},
		{"too short", "Pass1", false},
		{"missing uppercase", "password1", false},
		{"missing lowercase", "PASSWORD1", false},
		{"missing digit", "PasswordX", false},
		{"long valid password", "SuperSecretPassword99", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &RegisterRequest{Password: tt.password}
			valid, msg := req.ValidatePassword()
			if valid != tt.valid {
				t.Errorf("ValidatePassword() = %v (%s), want %v", valid, msg, tt.valid)
			}
		})
	}
}

func TestRegisterRequest_ValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"owner.name+tag@sub.example.vn", true},
		{"not-an-email", false},
		{"@example.com", false},
		{"user@", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			req := &RegisterRequest{Email: tt.email}
			valid, _ := req.ValidateEmail()
			if valid != tt.valid {
				t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, valid, tt.valid)
			}
		})
	}
}

func TestRegisterRequest_ValidateRole(t *testing.T) {
	tests := []struct {
		role  string
		valid bool
	}{
		{"", true},
		{"user", true},
		{"owner", true},
		{"enterprise", true},
		{"admin", false},
		{"superuser", false},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			req := &RegisterRequest{Role: tt.role}
			valid, _ := req.ValidateRole()
			if valid != tt.valid {
				t.Errorf("ValidateRole(%q) = %v, want %v", tt.role, valid, tt.valid)
			}
		})
	}
}

func TestUpdateProfileRequest_Validate(t *testing.T) {
	empty := &UpdateProfileRequest{}
	if valid, _ := empty.Validate(); valid {
		t.Error("Validate() on empty request should fail")
	}

	short := &UpdateProfileRequest{FullName: "A"}
	if valid, _ := short.Validate(); valid {
		t.Error("Validate() with one-character name should fail")
	}

	ok := &UpdateProfileRequest{PhoneNumber: "0901234567"}
	if valid, msg := ok.Validate(); !valid {
		t.Errorf("Validate() phone-only update failed: %s", msg)
	}
}
