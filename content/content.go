// Package content holds the marketing copy for the site. The copy ships
// embedded in the binary and can be replaced by a YAML file at startup.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var defaultSite []byte

var (
	ErrNoPlans     = errors.New("site content has no plans")
	ErrUnknownPlan = errors.New("unknown plan")
)

// Plan actions decide what the plan's call-to-action button does.
const (
	ActionUpload   = "upload"
	ActionCheckout = "checkout"
	ActionContact  = "contact"
)

type NavItem struct {
	Name string `yaml:"name"`
	Href string `yaml:"href"`
}

type Hero struct {
	Badge       string   `yaml:"badge"`
	Heading     string   `yaml:"heading"`
	Highlight   string   `yaml:"highlight"`
	Subtitle    []string `yaml:"subtitle"`
	Problems    []string `yaml:"problems"`
	Solutions   []string `yaml:"solutions"`
	Benefits    []string `yaml:"benefits"`
	Tools       []string `yaml:"tools"`
	DemoMessage string   `yaml:"demo_message"`
	Testimonial string   `yaml:"testimonial"`
}

type FeatureItem struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type FeatureCategory struct {
	Category string        `yaml:"category"`
	Color    string        `yaml:"color"`
	Items    []FeatureItem `yaml:"items"`
}

type Stat struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type Plan struct {
	Name           string   `yaml:"name"`
	MonthlyPrice   int      `yaml:"monthly_price"`
	Period         string   `yaml:"period"`
	Description    string   `yaml:"description"`
	Features       []string `yaml:"features"`
	Limitations    []string `yaml:"limitations"`
	CTA            string   `yaml:"cta"`
	Action         string   `yaml:"action"`
	Popular        bool     `yaml:"popular"`
	ContactMessage string   `yaml:"contact_message"`
}

// Free reports whether the plan costs nothing.
func (p Plan) Free() bool {
	return p.MonthlyPrice == 0
}

type Enterprise struct {
	Body           string   `yaml:"body"`
	Perks          []string `yaml:"perks"`
	ContactMessage string   `yaml:"contact_message"`
	DemoMessage    string   `yaml:"demo_message"`
}

type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type Site struct {
	Name        string            `yaml:"name"`
	Tagline     string            `yaml:"tagline"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	ThemeColor  string            `yaml:"theme_color"`
	Nav         []NavItem         `yaml:"nav"`
	Hero        Hero              `yaml:"hero"`
	Features    []FeatureCategory `yaml:"features"`
	Stats       []Stat            `yaml:"stats"`
	Plans       []Plan            `yaml:"plans"`
	Enterprise  Enterprise        `yaml:"enterprise"`
	FAQs        []FAQ             `yaml:"faqs"`
}

// Default returns the embedded site copy.
func Default() (*Site, error) {
	return Parse(defaultSite)
}

// LoadFile reads site copy from a YAML file.
func LoadFile(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	if len(site.Plans) == 0 {
		return nil, ErrNoPlans
	}
	for i, p := range site.Plans {
		if p.Action == "" {
			site.Plans[i].Action = ActionCheckout
		}
	}
	return &site, nil
}

// Plan looks a plan up by name, ignoring case.
func (s *Site) Plan(name string) (Plan, error) {
	for _, p := range s.Plans {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("%s: %w", name, ErrUnknownPlan)
}
