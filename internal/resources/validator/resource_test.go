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

func TestValidate(t *testing.T) {
	v := NewResourceValidator(testLogger())

	tests := []struct {
		name     string
		resource *model.Resource
		wantErr  bool
	}{
		{
			name:     "valid resource",
			resource: &model.Resource{Name: "Conference Room A", UserID: "user-1"},
			wantErr:  false,
		},
		{
			name: "valid with description",
			resource: &model.Resource{
				Name:        "Projector",
				Description: "4K projector on the 3rd floor",
				UserID:      "user-1",
			},
			wantErr: false,
		},
		{
			name:     "missing name",
			resource: &model.Resource{UserID: "user-1"},
			wantErr:  true,
		},
		{
			name:     "name too long",
			resource: &model.Resource{Name: strings.Repeat("x", 31), UserID: "user-1"},
			wantErr:  true,
		},
		{
			name: "description too long",
			resource: &model.Resource{
				Name:        "Room",
				Description: strings.Repeat("x", 501),
				UserID:      "user-1",
			},
			wantErr: true,
		},
		{
			name:     "missing owner",
			resource: &model.Resource{Name: "Room"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.resource)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewResourceValidator(testLogger())
	description := "updated description"
	empty := ""
	long := strings.Repeat("x", 501)

	tests := []struct {
		name    string
		update  *model.ResourceUpdate
		wantErr bool
	}{
		{"name only", &model.ResourceUpdate{Name: "New name"}, false},
		{"description only", &model.ResourceUpdate{Description: &description}, false},
		{"clearing description", &model.ResourceUpdate{Description: &empty}, false},
		{"both fields", &model.ResourceUpdate{Name: "New name", Description: &description}, false},
		{"no fields", &model.ResourceUpdate{}, true},
		{"name too long", &model.ResourceUpdate{Name: strings.Repeat("x", 31)}, true},
		{"description too long", &model.ResourceUpdate{Description: &long}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(tt.update)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpdate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
