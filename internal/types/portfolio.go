// Package types provides type definitions for structured data used throughout ResuAI.
package types

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// PortfolioDocument is the unit of persistence, one per user.
type PortfolioDocument struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience" validate:"dive"`
	Education      []Education     `json:"education" validate:"dive"`
	Skills         []string        `json:"skills"`
	Projects       []Project       `json:"projects" validate:"dive"`
	Certifications []Certification `json:"certifications" validate:"dive"`
	ColorPalette   *ColorPalette   `json:"colorPalette,omitempty"`
}

// PersonalInfo holds the identity and contact block of a portfolio.
type PersonalInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website" validate:"omitempty,url"`
	Location string `json:"location"`
	// ProfilePictureDataURI is either an inline data URI or an object store URL.
	ProfilePictureDataURI string       `json:"profilePictureDataUri,omitempty"`
	SocialLinks           []SocialLink `json:"socialLinks,omitempty" validate:"dive"`
}

// SocialLink is a (platform, url) pair shown in the portfolio header.
type SocialLink struct {
	Platform string `json:"platform" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
}

// Experience represents a single employment entry.
type Experience struct {
	Role        string   `json:"role"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Dates       string   `json:"dates"`
	Description []string `json:"description"`
}

// Education represents a single education entry.
type Education struct {
	Degree   string `json:"degree"`
	School   string `json:"school"`
	Location string `json:"location"`
	Dates    string `json:"dates"`
}

// Project represents a portfolio project.
type Project struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Technologies    []string `json:"technologies"`
	URL             string   `json:"url" validate:"omitempty,url"`
	PreviewImageURI string   `json:"previewImageUri,omitempty"`
}

// Certification represents a professional certification.
type Certification struct {
	Name                string `json:"name"`
	IssuingOrganization string `json:"issuingOrganization"`
	Date                string `json:"date"`
	CredentialURL       string `json:"credentialUrl,omitempty" validate:"omitempty,url"`
}

// ColorPalette holds the five named theme colors used for presentation.
type ColorPalette struct {
	Primary    string `json:"primary" validate:"omitempty,hexcolor"`
	Secondary  string `json:"secondary" validate:"omitempty,hexcolor"`
	Accent     string `json:"accent" validate:"omitempty,hexcolor"`
	Background string `json:"background" validate:"omitempty,hexcolor"`
	Foreground string `json:"foreground" validate:"omitempty,hexcolor"`
}

// StoredPortfolio is a PortfolioDocument together with its owner and version token.
type StoredPortfolio struct {
	UserID    uuid.UUID          `json:"user_id"`
	Document  *PortfolioDocument `json:"document"`
	Version   int64              `json:"version"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewPortfolioDocument returns an empty, normalized document.
func NewPortfolioDocument() *PortfolioDocument {
	doc := &PortfolioDocument{}
	doc.Normalize()
	return doc
}

// Normalize replaces absent lists with empty ones and trims free-text fields.
// Nested lists (experience descriptions, project technologies) are normalized too.
func (d *PortfolioDocument) Normalize() {
	if d == nil {
		return
	}

	p := &d.PersonalInfo
	p.Name = strings.TrimSpace(p.Name)
	p.Title = strings.TrimSpace(p.Title)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Website = normalizeLink(p.Website)
	p.Location = strings.TrimSpace(p.Location)
	p.ProfilePictureDataURI = strings.TrimSpace(p.ProfilePictureDataURI)
	links := make([]SocialLink, 0, len(p.SocialLinks))
	for _, link := range p.SocialLinks {
		link.Platform = strings.TrimSpace(link.Platform)
		link.URL = normalizeLink(link.URL)
		if link.Platform == "" && link.URL == "" {
			continue
		}
		links = append(links, link)
	}
	p.SocialLinks = links

	d.Summary = strings.TrimSpace(d.Summary)

	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	for i := range d.Experience {
		e := &d.Experience[i]
		e.Role = strings.TrimSpace(e.Role)
		e.Company = strings.TrimSpace(e.Company)
		e.Location = strings.TrimSpace(e.Location)
		e.Dates = strings.TrimSpace(e.Dates)
		e.Description = compactLines(e.Description)
	}

	if d.Education == nil {
		d.Education = []Education{}
	}
	for i := range d.Education {
		e := &d.Education[i]
		e.Degree = strings.TrimSpace(e.Degree)
		e.School = strings.TrimSpace(e.School)
		e.Location = strings.TrimSpace(e.Location)
		e.Dates = strings.TrimSpace(e.Dates)
	}

	d.Skills = compactLines(d.Skills)

	if d.Projects == nil {
		d.Projects = []Project{}
	}
	for i := range d.Projects {
		pr := &d.Projects[i]
		pr.Name = strings.TrimSpace(pr.Name)
		pr.Description = strings.TrimSpace(pr.Description)
		pr.URL = normalizeLink(pr.URL)
		pr.PreviewImageURI = strings.TrimSpace(pr.PreviewImageURI)
		pr.Technologies = compactLines(pr.Technologies)
	}

	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
	for i := range d.Certifications {
		c := &d.Certifications[i]
		c.Name = strings.TrimSpace(c.Name)
		c.IssuingOrganization = strings.TrimSpace(c.IssuingOrganization)
		c.Date = strings.TrimSpace(c.Date)
		c.CredentialURL = normalizeLink(c.CredentialURL)
	}

	if d.ColorPalette != nil {
		c := d.ColorPalette
		c.Primary = strings.TrimSpace(c.Primary)
		c.Secondary = strings.TrimSpace(c.Secondary)
		c.Accent = strings.TrimSpace(c.Accent)
		c.Background = strings.TrimSpace(c.Background)
		c.Foreground = strings.TrimSpace(c.Foreground)
	}
}

// Clone returns a deep copy of the document.
func (d *PortfolioDocument) Clone() *PortfolioDocument {
	if d == nil {
		return nil
	}
	out := *d
	out.PersonalInfo.SocialLinks = slices.Clone(d.PersonalInfo.SocialLinks)
	out.Experience = slices.Clone(d.Experience)
	for i := range out.Experience {
		out.Experience[i].Description = slices.Clone(d.Experience[i].Description)
	}
	out.Education = slices.Clone(d.Education)
	out.Skills = slices.Clone(d.Skills)
	out.Projects = slices.Clone(d.Projects)
	for i := range out.Projects {
		out.Projects[i].Technologies = slices.Clone(d.Projects[i].Technologies)
	}
	out.Certifications = slices.Clone(d.Certifications)
	if d.ColorPalette != nil {
		palette := *d.ColorPalette
		out.ColorPalette = &palette
	}
	return &out
}

// Validate validates the document using the validator.
func (d *PortfolioDocument) Validate() error {
	return validate.Struct(d)
}

// DropInvalidFields clears links and palette colors that would fail
// Validate, and drops social links without a usable URL. A social link
// with a URL but no platform is named after the URL's host. Model output
// goes through it so a freshly extracted document is always savable.
func (d *PortfolioDocument) DropInvalidFields() {
	if d == nil {
		return
	}

	p := &d.PersonalInfo
	p.Website = validOrEmpty(p.Website, "url")
	links := make([]SocialLink, 0, len(p.SocialLinks))
	for _, link := range p.SocialLinks {
		link.URL = validOrEmpty(link.URL, "url")
		if link.URL == "" {
			continue
		}
		if link.Platform == "" {
			link.Platform = platformFor(link.URL)
		}
		links = append(links, link)
	}
	p.SocialLinks = links

	for i := range d.Projects {
		d.Projects[i].URL = validOrEmpty(d.Projects[i].URL, "url")
	}
	for i := range d.Certifications {
		d.Certifications[i].CredentialURL = validOrEmpty(d.Certifications[i].CredentialURL, "url")
	}

	if c := d.ColorPalette; c != nil {
		c.Primary = validOrEmpty(c.Primary, "hexcolor")
		c.Secondary = validOrEmpty(c.Secondary, "hexcolor")
		c.Accent = validOrEmpty(c.Accent, "hexcolor")
		c.Background = validOrEmpty(c.Background, "hexcolor")
		c.Foreground = validOrEmpty(c.Foreground, "hexcolor")
	}
}

func validOrEmpty(value, tag string) string {
	if value == "" || validate.Var(value, tag) != nil {
		return ""
	}
	return value
}

// platformFor names a link by its host, "github.com" for
// "https://www.github.com/jane". Opaque links such as mailto use the scheme.
func platformFor(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "Link"
	}
	if host := strings.TrimPrefix(u.Hostname(), "www."); host != "" {
		return host
	}
	if u.Scheme != "" {
		return u.Scheme
	}
	return "Link"
}

// normalizeLink trims a link and gives bare host paths such as
// "github.com/jane" an https scheme.
func normalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" || strings.Contains(link, "://") || strings.HasPrefix(link, "mailto:") {
		return link
	}
	if strings.ContainsAny(link, " \t") || !strings.Contains(link, ".") {
		return link
	}
	return "https://" + link
}

// compactLines trims every entry and drops blank ones. Never returns nil.
func compactLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
