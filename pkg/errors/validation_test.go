package errors

import (
	"strings"
	"testing"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		login   string
		wantErr bool
	}{
		{"octocat", false},
		{"a", false},
		{"mona-lisa", false},
		{"User123", false},
		{strings.Repeat("a", 39), false},
		{"", true},
		{strings.Repeat("a", 40), true},
		{"-leading", true},
		{"trailing-", false},
		{"double--hyphen", false},
		{"a/b", true},
		{"has space", true},
		{"../etc", true},
		{"tab\tchar", true},
		{"under_score", true},
	}

	for _, tt := range tests {
		t.Run(tt.login, func(t *testing.T) {
			err := ValidateLogin(tt.login)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLogin(%q) error = %v, wantErr %v", tt.login, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateLogin(%q) code = %v, want %v", tt.login, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://api.github.com", false},
		{"http://localhost:8080", false},
		{"", true},
		{"ftp://example.com", true},
		{"api.github.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if err := ValidateURL(tt.url); (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
