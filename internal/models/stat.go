package models

// DispatchStatDay holds schedule coverage for a single calendar day.
type DispatchStatDay struct {
	Day         Date `json:"day"`
	Schedules   int  `json:"schedules"`
	Staffed     int  `json:"staffed"`
	Unstaffed   int  `json:"unstaffed"`
	Assignments int  `json:"assignments"`
}

// DispatchStat is the job pipeline state plus per-day coverage for the
// upcoming window.
type DispatchStat struct {
	TotalJobs     int               `json:"totalJobs"`
	PendingJobs   int               `json:"pendingJobs"`
	ScheduledJobs int               `json:"scheduledJobs"`
	CompletedJobs int               `json:"completedJobs"`
	StaffedRate   float64           `json:"staffedRate"` // staffed/schedules in the window
	PerDay        []DispatchStatDay `json:"perDay"`
}
