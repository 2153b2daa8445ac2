package main

import (
	"fmt"
	"io"

	"github.com/stanstork/crewdispatch/internal/models"
)

// maxListed caps how many successes and failures are printed.
const maxListed = 5

func printSchedule(w io.Writer, r models.ScheduleReport) {
	fmt.Fprintf(w, "Scheduling: %s\n", r.Message)
	for i, s := range r.Scheduled {
		if i == maxListed {
			fmt.Fprintf(w, "  ... and %d more\n", len(r.Scheduled)-maxListed)
			break
		}
		fmt.Fprintf(w, "  + job %s scheduled for %s\n", s.JobNumber, s.ScheduledDate)
	}
	for i, s := range r.Skipped {
		if i == maxListed {
			fmt.Fprintf(w, "  ... and %d more skipped\n", len(r.Skipped)-maxListed)
			break
		}
		fmt.Fprintf(w, "  - job %s skipped: %s\n", s.JobNumber, s.Reason)
	}
}

func printBatch(w io.Writer, r models.BatchReport) {
	fmt.Fprintf(w, "Assignment: %s\n", r.Message)
	fmt.Fprintf(w, "  total %d, successful %d, failed %d\n",
		r.TotalAssignments, r.SuccessfulAssignments, r.FailedAssignments)

	var ok, failed []models.SlotOutcome
	for _, o := range r.Assignments {
		if o.Status == models.SlotStatusAssigned {
			ok = append(ok, o)
		} else {
			failed = append(failed, o)
		}
	}

	if len(ok) > 0 {
		fmt.Fprintln(w, "  Successful assignments:")
		for i, o := range ok {
			if i == maxListed {
				fmt.Fprintf(w, "    ... and %d more\n", len(ok)-maxListed)
				break
			}
			fmt.Fprintf(w, "    job %s %s #%d -> %s\n", o.JobNumber, o.Trade, o.Slot, o.InstallerName)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintln(w, "  Failed assignments:")
		for i, o := range failed {
			if i == maxListed {
				fmt.Fprintf(w, "    ... and %d more\n", len(failed)-maxListed)
				break
			}
			fmt.Fprintf(w, "    job %s %s #%d: %s\n", o.JobNumber, o.Trade, o.Slot, o.Reason)
		}
	}
	for i, s := range r.SkippedJobs {
		if i == maxListed {
			fmt.Fprintf(w, "  ... and %d more skipped\n", len(r.SkippedJobs)-maxListed)
			break
		}
		fmt.Fprintf(w, "  - job %s skipped: %s\n", s.JobNumber, s.Reason)
	}
}

func printCombined(w io.Writer, r models.CombinedReport) {
	fmt.Fprintln(w, r.Message)
	printSchedule(w, r.Scheduling)
	printBatch(w, r.Assignment)
}
