package model

// ResourceCategory tags an emergency resource by the kind of situation it
// serves. Categories drive the keyword heuristics in the resource catalog.
type ResourceCategory string

const (
	CategorySuicide      ResourceCategory = "suicide"
	CategoryAbuse        ResourceCategory = "abuse"
	CategoryMentalHealth ResourceCategory = "mental_health"
	CategoryCrisis       ResourceCategory = "crisis"
	CategoryLocal        ResourceCategory = "local"
)

// EmergencyResource is one entry of the static resource catalog, loaded from
// the safety rules file at startup and read-only afterwards.
type EmergencyResource struct {
	Title          string           `toml:"title" json:"title"`
	Description    string           `toml:"description" json:"description"`
	ContactInfo    string           `toml:"contact_info" json:"contact_info"`
	Category       ResourceCategory `toml:"category" json:"category"`
	IsPriority     bool             `toml:"is_priority" json:"is_priority"`
	AvailableHours string           `toml:"available_hours" json:"available_hours"`
}
