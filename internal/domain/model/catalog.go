package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrServiceNotFound is returned when a catalog operation targets an unknown key.
var ErrServiceNotFound = errors.New("service not found")

// maxSlugLength bounds generated service keys.
const maxSlugLength = 40

// fallbackSlug is used when a label has no usable characters.
const fallbackSlug = "srv"

// Service is a per-area restoration service.
//
// @Description Service billed per square meter of treated surface
type Service struct {
	// Key is the stable identifier referenced by selections and cost tables
	Key string `json:"key" bson:"key" example:"sanding"`
	// Label is the display name
	Label string `json:"label" bson:"label" example:"Ponçage de finition"`
	// PriceTTCPerArea is the sale price per m², tax included
	PriceTTCPerArea float64 `json:"price_ttc_per_m2" bson:"price_ttc_per_m2" example:"12"`
}

// HardwareService is a service billed per unit (hinges, handles, locks).
//
// @Description Service billed per hardware unit
type HardwareService struct {
	Key   string `json:"key" bson:"key" example:"hardware_change"`
	Label string `json:"label" bson:"label" example:"Changement de ferrures"`
	// UnitPriceTTC is the sale price per unit, tax included
	UnitPriceTTC float64 `json:"unit_price_ttc" bson:"unit_price_ttc" example:"18"`
}

// Catalog is the ordered list of services a quote can select from.
// Every mutating method returns a new Catalog and leaves the receiver as is.
//
// @Description Ordered service catalog
type Catalog struct {
	Services []Service         `json:"services" bson:"services"`
	Hardware []HardwareService `json:"hardware" bson:"hardware"`
}

// ServicePrice returns the per-area TTC price of a service.
func (c Catalog) ServicePrice(key string) (float64, bool) {
	for _, s := range c.Services {
		if s.Key == key {
			return s.PriceTTCPerArea, true
		}
	}
	return 0, false
}

// HardwarePrice returns the unit TTC price of a hardware service.
func (c Catalog) HardwarePrice(key string) (float64, bool) {
	for _, h := range c.Hardware {
		if h.Key == key {
			return h.UnitPriceTTC, true
		}
	}
	return 0, false
}

// HasKey reports whether key is used by any service or hardware service.
func (c Catalog) HasKey(key string) bool {
	if _, ok := c.ServicePrice(key); ok {
		return true
	}
	_, ok := c.HardwarePrice(key)
	return ok
}

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Services: make([]Service, len(c.Services)),
		Hardware: make([]HardwareService, len(c.Hardware)),
	}
	copy(out.Services, c.Services)
	copy(out.Hardware, c.Hardware)
	return out
}

// AddService appends a service whose key is derived from label. On a key
// collision a numeric suffix is appended (-2, -3, ...). It returns the new
// catalog and the key that was assigned.
func (c Catalog) AddService(label string, priceTTCPerArea float64) (Catalog, string) {
	key := c.UniqueKey(Slugify(label))
	out := c.Clone()
	out.Services = append(out.Services, Service{
		Key:             key,
		Label:           strings.TrimSpace(label),
		PriceTTCPerArea: priceTTCPerArea,
	})
	return out, key
}

// UniqueKey returns base if unused, otherwise base-N with the smallest N >= 2
// that is free.
func (c Catalog) UniqueKey(base string) string {
	if !c.HasKey(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !c.HasKey(candidate) {
			return candidate
		}
	}
}

// RenameService changes the label of a service. The key is kept.
func (c Catalog) RenameService(key, label string) (Catalog, error) {
	idx := c.serviceIndex(key)
	if idx < 0 {
		return c, fmt.Errorf("%w: %s", ErrServiceNotFound, key)
	}
	out := c.Clone()
	out.Services[idx].Label = strings.TrimSpace(label)
	return out, nil
}

// SetServicePrice changes the per-area price of a service.
func (c Catalog) SetServicePrice(key string, priceTTCPerArea float64) (Catalog, error) {
	idx := c.serviceIndex(key)
	if idx < 0 {
		return c, fmt.Errorf("%w: %s", ErrServiceNotFound, key)
	}
	out := c.Clone()
	out.Services[idx].PriceTTCPerArea = priceTTCPerArea
	return out, nil
}

// RemoveService drops a service from the catalog.
func (c Catalog) RemoveService(key string) (Catalog, error) {
	idx := c.serviceIndex(key)
	if idx < 0 {
		return c, fmt.Errorf("%w: %s", ErrServiceNotFound, key)
	}
	out := c.Clone()
	out.Services = append(out.Services[:idx], out.Services[idx+1:]...)
	return out, nil
}

// SetHardwarePrice changes the unit price of a hardware service.
func (c Catalog) SetHardwarePrice(key string, unitPriceTTC float64) (Catalog, error) {
	for i, h := range c.Hardware {
		if h.Key == key {
			out := c.Clone()
			out.Hardware[i].UnitPriceTTC = unitPriceTTC
			return out, nil
		}
	}
	return c, fmt.Errorf("%w: %s", ErrServiceNotFound, key)
}

func (c Catalog) serviceIndex(key string) int {
	for i, s := range c.Services {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// Slugify turns a display label into a service key: lower case, accents
// removed, every run of other characters replaced by a single dash.
func Slugify(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, strings.ToLower(label))
	if err != nil {
		plain = strings.ToLower(label)
	}

	var b strings.Builder
	b.Grow(len(plain))
	dash := false
	for _, r := range plain {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}
