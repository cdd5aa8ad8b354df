package service

import (
	"strings"

	"github.com/havenhealth/haven/api/internal/config"
	"github.com/havenhealth/haven/api/internal/model"
)

const fallbackRegion = "international"

// ResourceDirectory serves the region-keyed crisis helpline directory loaded
// from the engine configuration
type ResourceDirectory struct {
	byRegion map[string][]model.ResourceContact
}

// NewResourceDirectory builds the directory from an engine config
func NewResourceDirectory(engine *config.EngineConfig) *ResourceDirectory {
	byRegion := make(map[string][]model.ResourceContact, len(engine.Resources))
	for region, entries := range engine.Resources {
		contacts := make([]model.ResourceContact, 0, len(entries))
		for _, e := range entries {
			contacts = append(contacts, model.ResourceContact{
				Name:  e.Name,
				Phone: e.Phone,
				Kind:  e.Kind,
			})
		}
		byRegion[strings.ToLower(region)] = contacts
	}
	return &ResourceDirectory{byRegion: byRegion}
}

// ContactsFor returns the helplines for a region, falling back to the
// international list when the region is unknown or empty
func (d *ResourceDirectory) ContactsFor(region string) []model.ResourceContact {
	if contacts, ok := d.byRegion[strings.ToLower(strings.TrimSpace(region))]; ok {
		return contacts
	}
	return d.byRegion[fallbackRegion]
}

// Regions lists the regions with a dedicated helpline list
func (d *ResourceDirectory) Regions() []string {
	regions := make([]string, 0, len(d.byRegion))
	for r := range d.byRegion {
		regions = append(regions, r)
	}
	return regions
}
