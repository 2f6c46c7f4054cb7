package report

// Category is one entity collection tracked by the activity report.
type Category struct {
	Key         string `yaml:"key"`
	Label       string `yaml:"label"`
	Endpoint    string `yaml:"endpoint"`
	ResponseKey string `yaml:"response_key"`
}

// DefaultCategories lists the CRM collections reported on, in report order.
func DefaultCategories() []Category {
	return []Category{
		{Key: "organizations", Label: "Organizations", Endpoint: "organizations", ResponseKey: "organizations"},
		{Key: "jobs", Label: "Jobs", Endpoint: "jobs", ResponseKey: "jobs"},
		{Key: "jobSeekers", Label: "Job Seekers", Endpoint: "job-seekers", ResponseKey: "jobSeekers"},
		{Key: "hiringManagers", Label: "Hiring Managers", Endpoint: "hiring-managers", ResponseKey: "hiringManagers"},
		{Key: "placements", Label: "Placements", Endpoint: "placements", ResponseKey: "placements"},
		{Key: "leads", Label: "Leads", Endpoint: "leads", ResponseKey: "leads"},
	}
}
