package validator

import (
	"strings"
	"testing"

	"reservio/pkg/logger"
	"reservio/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func TestValidateRegistration(t *testing.T) {
	v := NewAccountValidator(testLogger())

	tests := []struct {
		name    string
		creds   *model.Credentials
		wantErr bool
	}{
		{
			name:    "valid credentials",
			creds:   &model.Credentials{Name: "Ada", Email: "ada@example.com", Password: "s3cret-password"},
			wantErr: false,
		},
		{
			name:    "missing name",
			creds:   &model.Credentials{Email: "ada@example.com", Password: "s3cret-password"},
			wantErr: true,
		},
		{
			name:    "missing email",
			creds:   &model.Credentials{Name: "Ada", Password: "s3cret-password"},
			wantErr: true,
		},
		{
			name:    "malformed email",
			creds:   &model.Credentials{Name: "Ada", Email: "not-an-email", Password: "s3cret-password"},
			wantErr: true,
		},
		{
			name:    "password too short",
			creds:   &model.Credentials{Name: "Ada", Email: "ada@example.com", Password: "short"},
			wantErr: true,
		},
		{
			name:    "password too long",
			creds:   &model.Credentials{Name: "Ada", Email: "ada@example.com", Password: strings.Repeat("x", 129)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRegistration(tt.creds)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRegistration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSignIn(t *testing.T) {
	v := NewAccountValidator(testLogger())

	tests := []struct {
		name    string
		creds   *model.Credentials
		wantErr bool
	}{
		{
			name:    "valid without name",
			creds:   &model.Credentials{Email: "ada@example.com", Password: "s3cret-password"},
			wantErr: false,
		},
		{
			name:    "missing password",
			creds:   &model.Credentials{Email: "ada@example.com"},
			wantErr: true,
		},
		{
			name:    "malformed email",
			creds:   &model.Credentials{Email: "nope", Password: "s3cret-password"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSignIn(tt.creds)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSignIn() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
