package capability

import (
	"strings"

	"github.com/benleb/autoscope/internal/models/device"
	"github.com/benleb/autoscope/internal/models/domain"
	mapset "github.com/deckarep/golang-set/v2"
)

var (
	excludedDomains = mapset.NewSet(
		domain.Automation, domain.DeviceTracker, domain.Person, domain.Sun,
		domain.Update, domain.Zone, domain.PersistentNotify,
	)

	excludedEntityCategories = mapset.NewSet("config", "diagnostic")

	// address-only entities
	excludedSuffixes = []string{"_ip", "_ip_address", "_mac", "_mac_address", "_ssid", "_bssid"}
)

// IsAutomationExcluded reports whether dev must never be part of an
// automation. It vetoes every registry rule, including the fallback.
func IsAutomationExcluded(dev device.Device) bool {
	if excludedDomains.Contains(dev.Domain) || excludedEntityCategories.Contains(dev.EntityCategory) {
		return true
	}

	objectID := dev.ObjectID()

	for _, suffix := range excludedSuffixes {
		if strings.HasSuffix(objectID, suffix) {
			return true
		}
	}

	return false
}
