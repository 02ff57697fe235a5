package domain

// Job is a listing from the catalog. MatchScore is computed per request and
// never stored with the catalog entry.
type Job struct {
	ID             string   `json:"id" yaml:"id" mapstructure:"id"`
	Title          string   `json:"title" yaml:"title" mapstructure:"title"`
	Company        string   `json:"company" yaml:"company" mapstructure:"company"`
	Location       string   `json:"location" yaml:"location" mapstructure:"location"`
	Provider       string   `json:"provider" yaml:"provider" mapstructure:"provider"`
	URL            string   `json:"url" yaml:"url" mapstructure:"url"`
	RequiredSkills []string `json:"requiredSkills" yaml:"required_skills" mapstructure:"required_skills"`
	MatchScore     float64  `json:"matchScore" yaml:"-" mapstructure:"-"`
}

// GeneratedDocs is the tailored CV and cover letter for one job.
type GeneratedDocs struct {
	CV          string `json:"cv"`
	CoverLetter string `json:"coverLetter"`
}
