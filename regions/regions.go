// Package regions holds the per-state agronomy reference used for prompts,
// language defaults and voice selection. The catalog is immutable after load.
package regions

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fasaldoc/language"
)

//go:embed regions.yaml
var defaultYAML []byte

// Crops offered for diagnosis.
var Crops = []string{"Rice", "Wheat", "Tomato", "Potato", "Cotton", "Maize", "Sugarcane", "Onion", "Soybean", "Groundnut", "Chili", "Brinjal"}

const fallbackTTS = "hi-IN"

// Season is a labelled month range. From/To are 1..12 and may wrap the year end.
// A season with From == 0 matches any month.
type Season struct {
	From int    `yaml:"from" json:"from,omitempty"`
	To   int    `yaml:"to"   json:"to,omitempty"`
	Name string `yaml:"name" json:"name"`
}

func (s Season) contains(month int) bool {
	if s.From == 0 {
		return true
	}
	if s.From <= s.To {
		return month >= s.From && month <= s.To
	}
	return month >= s.From || month <= s.To
}

type Profile struct {
	Name           string   `yaml:"name"           json:"name"`
	Dialect        string   `yaml:"dialect"        json:"dialect"`
	TTSLang        string   `yaml:"ttsLang"        json:"ttsLang"`
	DominantSoil   string   `yaml:"dominantSoil"   json:"dominantSoil"`
	Rainfall       string   `yaml:"rainfall"       json:"rainfall"`
	TempRange      string   `yaml:"tempRange"      json:"tempRange"`
	Seasons        []Season `yaml:"seasons"        json:"seasons"`
	CommonDiseases []string `yaml:"commonDiseases" json:"commonDiseases"`
	PestAlert      string   `yaml:"pestAlert"      json:"pestAlert"`
	GovtSchemes    []string `yaml:"govtSchemes"    json:"govtSchemes"`
	SoilAdvice     string   `yaml:"soilAdvice"     json:"soilAdvice"`
	Helpline       string   `yaml:"helpline"       json:"helpline"`
	AgriUniversity string   `yaml:"agriUniversity" json:"agriUniversity"`
	Zones          []string `yaml:"zones"          json:"zones"`
	WaterSituation string   `yaml:"waterSituation" json:"waterSituation"`
	MajorCrops     []string `yaml:"majorCrops"     json:"majorCrops"`
}

// Known is false for the fallback profile handed out for unknown regions.
func (p Profile) Known() bool { return len(p.Seasons) > 0 }

// DefaultLanguage is the location-derived output language; never empty.
func (p Profile) DefaultLanguage() string {
	if strings.TrimSpace(p.Dialect) == "" {
		return language.Fallback
	}
	return p.Dialect
}

// Voice is the BCP-47 tag used for speech output.
func (p Profile) Voice() string {
	if strings.TrimSpace(p.TTSLang) == "" {
		return fallbackTTS
	}
	return p.TTSLang
}

// Season returns the season label for month (1..12), or "" when none matches.
func (p Profile) Season(month time.Month) string {
	m := int(month)
	for _, s := range p.Seasons {
		if s.contains(m) {
			return s.Name
		}
	}
	return ""
}

// Catalog is a keyed, read-only lookup of region profiles.
type Catalog struct {
	byName map[string]Profile
	names  []string
}

// Parse builds a catalog from YAML (a list of profiles).
func Parse(data []byte) (*Catalog, error) {
	var list []Profile
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse regions: %w", err)
	}
	c := &Catalog{byName: make(map[string]Profile, len(list))}
	for _, p := range list {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key == "" {
			return nil, fmt.Errorf("parse regions: profile without name")
		}
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("parse regions: duplicate region %q", p.Name)
		}
		for _, s := range p.Seasons {
			if s.From < 0 || s.From > 12 || s.To < 0 || s.To > 12 || (s.From == 0) != (s.To == 0) {
				return nil, fmt.Errorf("parse regions: %s: bad season range %d-%d", p.Name, s.From, s.To)
			}
		}
		c.byName[key] = p
		c.names = append(c.names, p.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

// Default returns the built-in catalog of Indian states.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup finds a region by name (case-insensitive).
func (c *Catalog) Lookup(name string) (Profile, bool) {
	p, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Profile is Lookup that hands back a fallback profile for unknown regions.
func (c *Catalog) Profile(name string) Profile {
	if p, ok := c.Lookup(name); ok {
		return p
	}
	return Profile{Name: strings.TrimSpace(name), Dialect: language.Fallback, TTSLang: fallbackTTS}
}

// Names returns region names sorted alphabetically.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// SeasonFor is the pure season computation; the caller injects the month.
func (c *Catalog) SeasonFor(region string, month time.Month) string {
	return c.Profile(region).Season(month)
}
