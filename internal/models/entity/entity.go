package entity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/models/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// idPattern is the hub's "domain.object_id" syntax.
var idPattern = regexp.MustCompile(`^[a-z0-9_]+\.[a-z0-9_]+$`)

type EntityID struct {
	ID string `json:"entity_id" mapstructure:"entity_id"`
}

// NewEntityID creates a new entity id.
func NewEntityID(rawEntityID string) (*EntityID, error) {
	if rawEntityID == "" {
		return nil, models.EmptyEntityIDErr()
	}

	if !idPattern.MatchString(rawEntityID) {
		log.Debugf("invalid entity id: %q", rawEntityID)

		return nil, models.InvalidEntityIDErr(rawEntityID)
	}

	return &EntityID{ID: rawEntityID}, nil
}

// IsValid reports whether raw is a syntactically valid entity id.
func IsValid(raw string) bool {
	return idPattern.MatchString(raw)
}

// String returns the entity id as string.
func (eID *EntityID) String() string { return eID.ID }

// FmtString returns the entity id as pretty formatted string 💄.
func (eID *EntityID) FmtString() string {
	if eID == nil || eID.ID == "" {
		return ""
	}

	return FmtString(eID.ID)
}

// FmtString formats a raw entity id with a dimmed domain.
func FmtString(rawEntityID string) string {
	dom, entityName, _ := strings.Cut(rawEntityID, ".")

	brightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ddd")).Bold(true)
	darkStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).Bold(false)

	return darkStyle.Render(dom) + "." + brightStyle.Render(entityName)
}

// Domain returns the domain part of the entity id.
func (eID *EntityID) Domain() domain.Domain {
	rawDomain, _, _ := strings.Cut(eID.ID, ".")

	return domain.Domain(rawDomain)
}

// ObjectID returns the non-domain part (after the dot) of the entity id.
func (eID *EntityID) ObjectID() string {
	_, objectID, _ := strings.Cut(eID.ID, ".")

	return objectID
}

func (eID *EntityID) UnmarshalText(text []byte) error {
	entityID, err := NewEntityID(string(text))
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrInvalidEntityID, text)
	}

	*eID = *entityID

	return nil
}

func (eID *EntityID) MarshalText() ([]byte, error) {
	return []byte(eID.ID), nil
}
