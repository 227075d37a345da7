package models

import (
	"time"
)

// Profile represents a user profile document
type Profile struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"displayName"`
	Headline    string            `json:"headline"`
	Summary     string            `json:"summary"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Location    string            `json:"location"`
	AvatarURL   string            `json:"avatarUrl"`
	Skills      []string          `json:"skills"`
	Experience  []ExperienceEntry `json:"experience"`
	Education   []EducationEntry  `json:"education"`
	Links       []string          `json:"links"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ExperienceEntry represents one position on a profile
type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Period      string `json:"period"`
	Description string `json:"description"`
}

// EducationEntry represents one school entry on a profile
type EducationEntry struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Field  string `json:"field"`
	Period string `json:"period"`
}

// Work mode values for projects and feed filters
const (
	WorkModeRemote = "remote"
	WorkModeOnsite = "onsite"
	WorkModeHybrid = "hybrid"
	WorkModeAll    = "all"
)

// ProjectRecord represents a project listing document
type ProjectRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Tags         []string  `json:"tags"`
	SkillsNeeded []string  `json:"skillsNeeded"`
	Mode         string    `json:"mode"`
	Location     string    `json:"location"`
	OwnerID      string    `json:"ownerId"`
	TeamSize     int       `json:"teamSize"`
	IsOpen       bool      `json:"isOpen"`
	MatchScore   *float64  `json:"matchScore,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EnrichedProject is a project record augmented with owner display data
// and a derived relevance score. Enrichments are never persisted back.
type EnrichedProject struct {
	ProjectRecord
	OwnerName   string  `json:"ownerName"`
	OwnerAvatar string  `json:"ownerAvatar"`
	Score       float64 `json:"score"`
}

// ProjectFilter describes one feed query: the server-side predicates
// (work mode equality, ordering) plus the client-side filters
type ProjectFilter struct {
	Query       string   `json:"query"`
	Tags        []string `json:"tags"`
	Skills      []string `json:"skills"`
	WorkMode    string   `json:"workMode"`
	SortBy      string   `json:"sortBy"`
	SortDesc    bool     `json:"sortDesc"`
	OpenOnly    bool     `json:"openOnly"`
	TeamSizeMin int      `json:"teamSizeMin"`
	TeamSizeMax int      `json:"teamSizeMax"`
}

// ResumeAnalysis is the structured result of analyzing resume content
type ResumeAnalysis struct {
	Score            int      `json:"score"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	DetailedFeedback string   `json:"detailedFeedback"`
	EnhancedContent  string   `json:"enhancedContent"`
}

// Match job kinds
const (
	MatchJobProject = "project"
	MatchJobProfile = "profile"
)

// MatchJob references a created or updated document for the external
// matching process
type MatchJob struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	RefID      string    `json:"refId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// CacheEntry represents a cached generation response
type CacheEntry struct {
	Prompt    string
	Answer    string
	Role      string
	CreatedAt time.Time
}
