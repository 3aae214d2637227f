package entity

import (
	"errors"
	"testing"

	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/domain"
)

func TestNewEntityID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    domain.Domain
		wantErr error
	}{
		{name: "binary sensor", raw: "binary_sensor.motion_sensor_158d00022367f9", want: domain.BinarySensor},
		{name: "light", raw: "light.kitchen", want: domain.Light},
		{name: "custom domain", raw: "hacs.whatever", want: domain.Domain("hacs")},
		{name: "empty", raw: "", wantErr: models.ErrEmptyEntityID},
		{name: "no domain", raw: "living_room", wantErr: models.ErrInvalidEntityID},
		{name: "nested dots", raw: "light.living_room.hue", wantErr: models.ErrInvalidEntityID},
		{name: "upper case", raw: "Light.Kitchen", wantErr: models.ErrInvalidEntityID},
		{name: "template", raw: "{{ states('light.kitchen') }}", wantErr: models.ErrInvalidEntityID},
		{name: "trailing dot", raw: "light.", wantErr: models.ErrInvalidEntityID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eID, err := NewEntityID(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewEntityID(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("NewEntityID(%q) unexpected error: %v", tt.raw, err)
			}

			if got := eID.Domain(); got != tt.want {
				t.Errorf("EntityID.Domain() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntityID_UnmarshalText(t *testing.T) {
	var eID EntityID

	if err := eID.UnmarshalText([]byte("cover.bedroom_blind")); err != nil {
		t.Fatalf("UnmarshalText() unexpected error: %v", err)
	}

	if eID.ObjectID() != "bedroom_blind" {
		t.Errorf("ObjectID() = %q, want bedroom_blind", eID.ObjectID())
	}

	if err := eID.UnmarshalText([]byte("nope")); !errors.Is(err, models.ErrInvalidEntityID) {
		t.Errorf("UnmarshalText(nope) error = %v, want %v", err, models.ErrInvalidEntityID)
	}
}
