package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/repository"
)

// memStore mirrors the SQL store: same uniqueness constraints, the inner join
// on installer locations, and the per-trade same-date exclusion.
type memStore struct {
	mu sync.Mutex

	installers  []models.Installer
	jobs        []models.Job
	orders      []models.PurchaseOrder
	schedules   []models.JobSchedule
	assignments []models.InstallerAssignment
	nextID      int64

	findSchedulingErr error
	listOrdersErr     map[int64]error
	findCandidatesErr error
	insertErr         error
	slotCalls         int

	// beforeSlot runs ahead of each slot callback, standing in for a
	// concurrent writer.
	beforeSlot func(s *memStore)
}

func newMemStore() *memStore {
	return &memStore{nextID: 1000}
}

func (s *memStore) addInstaller(id int64, first string, trade models.Trade, active bool, locations ...int64) {
	s.installers = append(s.installers, models.Installer{
		ID: id, FirstName: first, LastName: "Smith", Trade: trade, IsActive: active, LocationIDs: locations,
	})
}

func (s *memStore) addJob(id int64, number string, location *int64, start *models.Date) {
	s.jobs = append(s.jobs, models.Job{ID: id, JobNumber: number, LocationID: location, StartDate: start, Status: models.JobStatusPending})
}

func (s *memStore) addSchedule(id, jobID int64, date models.Date) {
	s.schedules = append(s.schedules, models.JobSchedule{ID: id, JobID: jobID, ScheduledDate: date, Status: models.ScheduleStatusScheduled})
}

func (s *memStore) addPO(po models.PurchaseOrder) {
	s.orders = append(s.orders, po)
}

func (s *memStore) job(id int64) *models.Job {
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return &s.jobs[i]
		}
	}
	return nil
}

func (s *memStore) schedule(id int64) *models.JobSchedule {
	for i := range s.schedules {
		if s.schedules[i].ID == id {
			return &s.schedules[i]
		}
	}
	return nil
}

func (s *memStore) installer(id int64) *models.Installer {
	for i := range s.installers {
		if s.installers[i].ID == id {
			return &s.installers[i]
		}
	}
	return nil
}

func (s *memStore) FindJobsNeedingSchedule(_ context.Context, limit int) ([]models.UnscheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findSchedulingErr != nil {
		return nil, s.findSchedulingErr
	}

	var out []models.UnscheduledJob
	for _, j := range s.jobs {
		if j.Status == models.JobStatusCancelled || j.Status == models.JobStatusCompleted {
			continue
		}
		scheduled := false
		for _, sc := range s.schedules {
			if sc.JobID == j.ID {
				scheduled = true
			}
		}
		if !scheduled {
			out = append(out, models.UnscheduledJob{JobID: j.ID, JobNumber: j.JobNumber, StartDate: j.StartDate, EndDate: j.EndDate})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if (out[a].StartDate == nil) != (out[b].StartDate == nil) {
			return out[a].StartDate != nil
		}
		return out[a].JobID < out[b].JobID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) CreateSchedule(_ context.Context, ns models.NewSchedule) (models.JobSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := s.job(ns.JobID)
	if j == nil {
		return models.JobSchedule{}, fmt.Errorf("%w: job %d", repository.ErrInvalidReference, ns.JobID)
	}
	for _, sc := range s.schedules {
		if sc.JobID == ns.JobID && sc.ScheduledDate.Equal(ns.ScheduledDate) {
			return models.JobSchedule{}, fmt.Errorf("%w: schedule_job_date_unique", repository.ErrDuplicate)
		}
	}
	s.nextID++
	sc := models.JobSchedule{ID: s.nextID, JobID: ns.JobID, ScheduledDate: ns.ScheduledDate, Status: models.ScheduleStatusScheduled}
	s.schedules = append(s.schedules, sc)
	j.Status = models.JobStatusScheduled
	return sc, nil
}

func (s *memStore) FindJobsNeedingAssignment(_ context.Context, limit int) ([]models.AssignableJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.AssignableJob
	for _, sc := range s.schedules {
		assigned := false
		for _, a := range s.assignments {
			if a.ScheduleID == sc.ID {
				assigned = true
			}
		}
		if assigned {
			continue
		}
		j := s.job(sc.JobID)
		out = append(out, models.AssignableJob{
			JobID: j.ID, JobNumber: j.JobNumber, ScheduleID: sc.ID, ScheduledDate: sc.ScheduledDate, LocationID: j.LocationID,
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].ScheduledDate.Equal(out[b].ScheduledDate) {
			return out[a].ScheduledDate.Before(out[b].ScheduledDate.Time)
		}
		return out[a].ScheduleID < out[b].ScheduleID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListPurchaseOrders(_ context.Context, jobID int64) ([]models.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.listOrdersErr[jobID]; err != nil {
		return nil, err
	}

	var out []models.PurchaseOrder
	for _, po := range s.orders {
		if po.JobID == jobID {
			out = append(out, po)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *memStore) WithSlot(_ context.Context, _ models.Date, _ models.Trade, fn func(repository.SlotStore) error) error {
	s.slotCalls++
	if s.beforeSlot != nil {
		s.beforeSlot(s)
	}
	return fn(s)
}

func (s *memStore) CountTradeAssignments(_ context.Context, scheduleID int64, trade models.Trade) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, a := range s.assignments {
		if a.ScheduleID == scheduleID && s.installer(a.InstallerID).Trade == trade {
			n++
		}
	}
	return n, nil
}

func (s *memStore) FindCandidates(_ context.Context, f models.CandidateFilter) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findCandidatesErr != nil {
		return nil, s.findCandidatesErr
	}

	excluded := map[int64]bool{}
	for _, id := range f.ExcludeInstallerIDs {
		excluded[id] = true
	}
	if f.ExcludeDate != nil {
		for _, a := range s.assignments {
			sc := s.schedule(a.ScheduleID)
			holder := s.installer(a.InstallerID)
			if sc.ScheduledDate.Equal(*f.ExcludeDate) && holder.Trade == f.Trade {
				excluded[a.InstallerID] = true
			}
		}
	}

	var out []models.Candidate
	for _, in := range s.installers {
		if in.Trade != f.Trade || in.IsActive != f.IsActive || excluded[in.ID] || len(in.LocationIDs) == 0 {
			continue
		}
		if f.LocationID != nil && !containsID(in.LocationIDs, *f.LocationID) {
			continue
		}
		out = append(out, models.Candidate{ID: in.ID, FirstName: in.FirstName, LastName: in.LastName})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *memStore) CreateAssignment(_ context.Context, na models.NewAssignment) (models.InstallerAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return models.InstallerAssignment{}, s.insertErr
	}
	if s.schedule(na.ScheduleID) == nil || s.installer(na.InstallerID) == nil {
		return models.InstallerAssignment{}, fmt.Errorf("%w: assignment references", repository.ErrInvalidReference)
	}
	for _, a := range s.assignments {
		if a.ScheduleID == na.ScheduleID && a.InstallerID == na.InstallerID && a.POID == na.POID {
			return models.InstallerAssignment{}, fmt.Errorf("%w: assignments_unique", repository.ErrDuplicate)
		}
	}
	s.nextID++
	notes := na.Notes
	a := models.InstallerAssignment{
		ID: s.nextID, ScheduleID: na.ScheduleID, InstallerID: na.InstallerID, POID: na.POID,
		Status: models.AssignmentStatusAssigned, Notes: &notes,
	}
	s.assignments = append(s.assignments, a)
	return a, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
