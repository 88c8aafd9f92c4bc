package workspace

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a candidate as it moves through the
// pipeline. Transitions happen on the control service; the client only
// reflects the latest fetched snapshot and never invents or skips states.
type Status string

const (
	StatusNew              Status = "new"
	StatusSelected         Status = "selected"
	StatusGenerated        Status = "generated"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusApproved         Status = "approved"
	StatusPublished        Status = "published"
	StatusFailed           Status = "failed"
	StatusSkipped          Status = "skipped"
)

var allStatuses = []Status{
	StatusNew,
	StatusSelected,
	StatusGenerated,
	StatusAwaitingApproval,
	StatusApproved,
	StatusPublished,
	StatusFailed,
	StatusSkipped,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// generatedStatuses are the statuses at or past the caption generation
// stage. Generated content is present exactly for these.
var generatedStatuses = map[Status]struct{}{
	StatusGenerated:        {},
	StatusAwaitingApproval: {},
	StatusApproved:         {},
	StatusPublished:        {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusPublished || s == StatusSkipped
}

// PastGeneration reports whether a status is at or past the caption
// generation stage.
func (s Status) PastGeneration() bool {
	_, ok := generatedStatuses[s]
	return ok
}

// Platform identifies a supported source social network.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

// ParsePlatform converts a string into a known Platform.
func ParsePlatform(value string) (Platform, bool) {
	normalized := Platform(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case PlatformInstagram, PlatformFacebook:
		return normalized, true
	default:
		return "", false
	}
}

// Config is the per-workspace pipeline policy, persisted on the control
// service. approval_required decides the default run mode; the relation
// pick_top_n <= max_candidates is advisory and never enforced here.
type Config struct {
	ApprovalRequired bool `json:"approval_required"`
	IntervalDays     int  `json:"interval_days"`
	MaxCandidates    int  `json:"max_candidates"`
	PickTopN         int  `json:"pick_top_n"`
}

// Source is a registered page the pipeline collects from.
type Source struct {
	ID        int64     `json:"id"`
	Platform  Platform  `json:"platform"`
	Handle    string    `json:"handle"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// Generated is the localized content produced for a candidate once the
// generation stage has run.
type Generated struct {
	TitleEN    string   `json:"title_en"`
	CaptionEN  string   `json:"caption_en"`
	HashtagsEN []string `json:"hashtags_en"`
}

// Candidate is a piece of source content moving through the pipeline.
type Candidate struct {
	ID              int64      `json:"id"`
	Platform        Platform   `json:"platform"`
	OriginalURL     string     `json:"original_url"`
	CaptionRaw      string     `json:"caption_raw,omitempty"`
	MediaType       string     `json:"media_type"`
	MediaURL        string     `json:"media_url,omitempty"`
	PostedAtSource  *time.Time `json:"posted_at_source,omitempty"`
	EngagementScore int64      `json:"engagement_score"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	Generated       *Generated `json:"generated,omitempty"`
}

// HasGenerated reports whether generated content is attached.
func (c Candidate) HasGenerated() bool {
	return c.Generated != nil
}

// Stats is the server-derived aggregate snapshot. It is recomputed on
// every fetch and never cached beyond the current snapshot.
type Stats struct {
	TotalCandidates int        `json:"total_candidates"`
	TotalPublished  int        `json:"total_published"`
	PendingApproval int        `json:"pending_approval"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
}

// LogEvent is one pipeline log line, append-only on the server side.
type LogEvent struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	JobID     *int64    `json:"job_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PendingApproval returns the candidates waiting for operator approval,
// preserving their fetched order.
func PendingApproval(candidates []Candidate) []Candidate {
	var pending []Candidate
	for _, c := range candidates {
		if c.Status == StatusAwaitingApproval {
			pending = append(pending, c)
		}
	}
	return pending
}

// CountByStatus tallies candidates per status.
func CountByStatus(candidates []Candidate) map[Status]int {
	counts := make(map[Status]int, len(allStatuses))
	for _, c := range candidates {
		counts[c.Status]++
	}
	return counts
}
