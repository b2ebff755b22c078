package dispatch

import (
	"fmt"

	"github.com/google/uuid"
)

// siteNamespace scopes the name-based call-site IDs produced by CallSiteAt.
var siteNamespace = uuid.MustParse("5d3c1a4e-8f0b-4a57-9d6e-2b1f7c9e0a13")

// CallSite identifies one syntactic call location. Resolutions are cached
// per call site, so two sites calling the same method with the same
// argument classes keep separate entries.
type CallSite struct {
	ID       uuid.UUID
	Name     string
	Location string
}

// NewCallSite creates a call site with a random identity.
func NewCallSite(name string) *CallSite {
	return &CallSite{ID: uuid.New(), Name: name}
}

// CallSiteAt creates a call site whose identity is derived from location,
// so the same location always maps to the same cache entries.
func CallSiteAt(location, name string) *CallSite {
	return &CallSite{
		ID:       uuid.NewSHA1(siteNamespace, []byte(location+"#"+name)),
		Name:     name,
		Location: location,
	}
}

func (s *CallSite) String() string {
	if s.Location == "" {
		return fmt.Sprintf("%s@%s", s.Name, s.ID)
	}
	return fmt.Sprintf("%s@%s", s.Name, s.Location)
}
