package sources

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultPlaceholderBaseURL = "https://via.placeholder.com"
	defaultTextColor          = "FFFFFF"
	genericColor              = "757575"
	genericLabelLength        = 20
)

// placeholderCategory maps product keywords to a colored placeholder label
type placeholderCategory struct {
	keywords []string
	color    string
	label    string // already query-escaped
}

// placeholderCategories is checked in order; the first category with a
// keyword contained in the lowercased product name wins.
var placeholderCategories = []placeholderCategory{
	{keywords: []string{"compressor", "motor", "pump"}, color: "4CAF50", label: "Compressor+Motor"},
	{keywords: []string{"sensor", "temperature", "pressure"}, color: "2196F3", label: "Sensor"},
	{keywords: []string{"valve", "solenoid"}, color: "FF9800", label: "Valve"},
	{keywords: []string{"controller", "board", "display"}, color: "9C27B0", label: "Controller"},
	{keywords: []string{"coil", "evaporator", "condenser"}, color: "607D8B", label: "Coil"},
	{keywords: []string{"paint", "primer", "brush"}, color: "795548", label: "Paint+Supplies"},
	{keywords: []string{"gas", "refrigerant", "nitrogen"}, color: "F44336", label: "Gas+Cylinder"},
	{keywords: []string{"electrical", "cable", "wire", "switch"}, color: "FFC107", label: "Electrical"},
}

// PlaceholderOptions configures the placeholder generator
type PlaceholderOptions struct {
	BaseURL   string
	Width     int
	Height    int
	TextColor string
}

// PlaceholderSource builds a deterministic placeholder reference from the
// product name alone. It never fails and never touches the network.
type PlaceholderSource struct {
	baseURL   string
	width     int
	height    int
	textColor string
}

// NewPlaceholderSource creates the placeholder generator
func NewPlaceholderSource(opts PlaceholderOptions) *PlaceholderSource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultPlaceholderBaseURL
	}
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.TextColor == "" {
		opts.TextColor = defaultTextColor
	}
	return &PlaceholderSource{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		width:     opts.Width,
		height:    opts.Height,
		textColor: opts.TextColor,
	}
}

func (s *PlaceholderSource) Name() string {
	return "placeholder"
}

// Attempt always returns a reference
func (s *PlaceholderSource) Attempt(ctx context.Context, productName string) (*string, error) {
	ref := s.Generate(productName)
	return &ref, nil
}

// Generate returns the placeholder reference for productName
func (s *PlaceholderSource) Generate(productName string) string {
	lower := strings.ToLower(productName)
	for _, category := range placeholderCategories {
		for _, keyword := range category.keywords {
			if strings.Contains(lower, keyword) {
				return s.build(category.color, category.label)
			}
		}
	}

	label := []rune(productName)
	if len(label) > genericLabelLength {
		label = label[:genericLabelLength]
	}
	return s.build(genericColor, quote(string(label)))
}

func (s *PlaceholderSource) build(color, label string) string {
	return fmt.Sprintf("%s/%dx%d/%s/%s?text=%s", s.baseURL, s.width, s.height, color, s.textColor, label)
}
