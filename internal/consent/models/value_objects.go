package models

// Category labels the kind of personal data a consent covers. Category
// binding allows a user to share financial data without exposing biometrics.
type Category string

const (
	CategoryFinancial  Category = "FINANCIAL"
	CategoryPersonal   Category = "PERSONAL"
	CategoryBiometric  Category = "BIOMETRIC"
	CategoryLocation   Category = "LOCATION"
	CategoryBehavioral Category = "BEHAVIORAL"
)

// ValidCategories is the single source of truth for all valid data categories.
var ValidCategories = map[Category]bool{
	CategoryFinancial:  true,
	CategoryPersonal:   true,
	CategoryBiometric:  true,
	CategoryLocation:   true,
	CategoryBehavioral: true,
}

// IsValid checks if the data category is one of the supported enum values.
func (c Category) IsValid() bool {
	return ValidCategories[c]
}

// Purpose labels why the recipient processes the data. Purpose binding allows
// selective revocation without affecting other flows.
type Purpose string

const (
	PurposeAnalytics          Purpose = "ANALYTICS"
	PurposeMarketing          Purpose = "MARKETING"
	PurposeServiceImprovement Purpose = "SERVICE_IMPROVEMENT"
	PurposeResearch           Purpose = "RESEARCH"
	PurposeThirdParty         Purpose = "THIRD_PARTY"
)

// ValidPurposes is the single source of truth for all valid consent purposes.
var ValidPurposes = map[Purpose]bool{
	PurposeAnalytics:          true,
	PurposeMarketing:          true,
	PurposeServiceImprovement: true,
	PurposeResearch:           true,
	PurposeThirdParty:         true,
}

// IsValid checks if the consent purpose is one of the supported enum values.
func (p Purpose) IsValid() bool {
	return ValidPurposes[p]
}

// Status represents the lifecycle state of a consent record.
//
// GRANTED is the only non-terminal state. REVOKED and EXPIRED are terminal:
// once a record leaves GRANTED it never transitions again.
type Status string

const (
	StatusGranted Status = "GRANTED"
	StatusRevoked Status = "REVOKED"
	StatusExpired Status = "EXPIRED"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	return s == StatusGranted || s == StatusRevoked || s == StatusExpired
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusRevoked || s == StatusExpired
}

// CatalogEntry describes a category or purpose for boundary consumers.
type CatalogEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryCatalog lists the supported data categories with display metadata.
var CategoryCatalog = []CatalogEntry{
	{ID: string(CategoryFinancial), Name: "Financial Data", Description: "Bank account, transaction history, credit score"},
	{ID: string(CategoryPersonal), Name: "Personal Information", Description: "Name, address, contact information"},
	{ID: string(CategoryBiometric), Name: "Biometric Data", Description: "Fingerprints, facial recognition, voice patterns"},
	{ID: string(CategoryLocation), Name: "Location Data", Description: "GPS coordinates, location history"},
	{ID: string(CategoryBehavioral), Name: "Behavioral Data", Description: "App usage patterns, preferences"},
}

// PurposeCatalog lists the supported purposes with display metadata.
var PurposeCatalog = []CatalogEntry{
	{ID: string(PurposeAnalytics), Name: "Analytics", Description: "Data analysis for improving services"},
	{ID: string(PurposeMarketing), Name: "Marketing", Description: "Promotions and advertisements"},
	{ID: string(PurposeServiceImprovement), Name: "Service Improvement", Description: "Enhancing product quality and features"},
	{ID: string(PurposeResearch), Name: "Research", Description: "Scientific or market research"},
	{ID: string(PurposeThirdParty), Name: "Third Party Sharing", Description: "Sharing with partner organizations"},
}
