package autoscope

import (
	"strings"

	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/scope"
	mapset "github.com/deckarep/golang-set/v2"
)

// Grants resolves user names to callers. Users that are neither admins nor
// tenants get no areas and therefore an empty allowed set.
type Grants struct {
	admins  mapset.Set[string]
	tenants map[string][]string
}

func NewGrants(admins []string, tenants map[string][]string) *Grants {
	grants := &Grants{
		admins:  mapset.NewSet[string](),
		tenants: make(map[string][]string, len(tenants)),
	}

	for _, admin := range admins {
		grants.admins.Add(normalizeUser(admin))
	}

	for user, areas := range tenants {
		grants.tenants[normalizeUser(user)] = areas
	}

	return grants
}

// Caller returns the caller for a user name.
func (g *Grants) Caller(user string) (scope.Caller, error) {
	name := normalizeUser(user)
	if name == "" {
		return scope.Caller{}, models.ErrEmptyUser
	}

	if g.admins.Contains(name) {
		return scope.Caller{Name: name, Admin: true}, nil
	}

	return scope.Caller{Name: name, Areas: g.tenants[name]}, nil
}

// user names are matched case-insensitively, viper lowercases map keys anyway
func normalizeUser(user string) string {
	return strings.ToLower(strings.TrimSpace(user))
}
