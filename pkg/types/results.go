package types

import "time"

// CreateResult holds the result of the 'new' command.
type CreateResult struct {
	Variation VariationRecord `json:"variation"`

	// Fallback is true when copy-on-write cloning was unavailable and a
	// plain deep copy was made instead.
	Fallback bool `json:"fallback"`
}

// ListResult holds the result of the 'list' command.
type ListResult struct {
	Variations []VariationInfo `json:"variations"`
}

// VariationInfo is one row of 'vary list'.
type VariationInfo struct {
	Name          string    `json:"name" yaml:"name"`
	Project       string    `json:"project" yaml:"project"`
	SourcePath    string    `json:"sourcePath" yaml:"sourcePath"`
	VariationPath string    `json:"variationPath" yaml:"variationPath"`
	CreatedAt     time.Time `json:"createdAt" yaml:"createdAt"`
	GitBacked     bool      `json:"gitBacked" yaml:"gitBacked"`

	// Missing is true when the variation directory no longer exists on
	// disk even though its record does.
	Missing bool `json:"missing" yaml:"missing"`
}

// RemoveResult holds the result of the 'rm' command.
type RemoveResult struct {
	Variation VariationRecord `json:"variation"`

	// Removed is true when the variation directory was deleted. False
	// means the directory was already gone and only the record remained.
	Removed bool `json:"removed"`
}

// Doctor check statuses.
const (
	CheckOK   = "ok"
	CheckWarn = "warn"
	CheckFail = "fail"
)

// DoctorCheck is one health check outcome.
type DoctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// DoctorResult holds the result of the 'doctor' command.
type DoctorResult struct {
	Checks []DoctorCheck `json:"checks"`
}

// Healthy reports whether no check failed. Warnings do not count against
// health.
func (d *DoctorResult) Healthy() bool {
	for _, c := range d.Checks {
		if c.Status == CheckFail {
			return false
		}
	}
	return true
}
