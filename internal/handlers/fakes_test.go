package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gorilla/mux"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stanstork/crewdispatch/internal/repository"
	"github.com/stanstork/crewdispatch/internal/temporal"
)

// Fakes embed the repository interfaces so each test only implements the
// methods it exercises.

type fakeInstallerRepo struct {
	repository.InstallerRepository
	filter     models.CandidateFilter
	candidates []models.Candidate
	created    models.Installer
	err        error
}

func (f *fakeInstallerRepo) FindCandidates(_ context.Context, filter models.CandidateFilter) ([]models.Candidate, error) {
	f.filter = filter
	return f.candidates, f.err
}

func (f *fakeInstallerRepo) Create(_ context.Context, in models.Installer) (models.Installer, error) {
	f.created = in
	in.ID = 1
	return in, f.err
}

func (f *fakeInstallerRepo) Get(_ context.Context, id int64) (models.Installer, error) {
	if f.err != nil {
		return models.Installer{}, f.err
	}
	return models.Installer{ID: id}, nil
}

type fakeJobRepo struct {
	repository.JobRepository
	created    models.Job
	createErr  error
	assignable []models.AssignableJob
	limit      int
}

func (f *fakeJobRepo) Create(_ context.Context, job models.Job) (models.Job, error) {
	if f.createErr != nil {
		return models.Job{}, f.createErr
	}
	job.ID = 42
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}
	f.created = job
	return job, nil
}

func (f *fakeJobRepo) FindJobsNeedingAssignment(_ context.Context, limit int) ([]models.AssignableJob, error) {
	f.limit = limit
	return f.assignable, nil
}

type fakePORepo struct {
	repository.PurchaseOrderRepository
	created []models.PurchaseOrder
	filter  repository.PurchaseOrderFilter
}

func (f *fakePORepo) Create(_ context.Context, po models.PurchaseOrder) (models.PurchaseOrder, error) {
	f.created = append(f.created, po)
	po.ID = int64(len(f.created))
	return po, nil
}

func (f *fakePORepo) List(_ context.Context, filter repository.PurchaseOrderFilter) ([]models.PurchaseOrder, error) {
	f.filter = filter
	return []models.PurchaseOrder{}, nil
}

type fakeAssignmentRepo struct {
	repository.AssignmentRepository
	err error
}

func (f *fakeAssignmentRepo) Create(_ context.Context, a models.NewAssignment) (models.InstallerAssignment, error) {
	if f.err != nil {
		return models.InstallerAssignment{}, f.err
	}
	return models.InstallerAssignment{
		ID:          9,
		ScheduleID:  a.ScheduleID,
		InstallerID: a.InstallerID,
		POID:        a.POID,
		Status:      models.AssignmentStatusAssigned,
	}, nil
}

type fakeEngine struct {
	limits   []int
	batch    models.BatchReport
	schedule models.ScheduleReport
	combined models.CombinedReport
	err      error
}

func (f *fakeEngine) ScheduleJobs(_ context.Context, limit int) (models.ScheduleReport, error) {
	f.limits = append(f.limits, limit)
	return f.schedule, f.err
}

func (f *fakeEngine) AssignInstallers(_ context.Context, limit int) (models.BatchReport, error) {
	f.limits = append(f.limits, limit)
	return f.batch, f.err
}

func (f *fakeEngine) ScheduleAndAssign(_ context.Context, limit int) (models.CombinedReport, error) {
	f.limits = append(f.limits, limit)
	return f.combined, f.err
}

type fakeDispatcher struct {
	status  string
	jobIDs  []int64
	batches []int
}

func (f *fakeDispatcher) DispatchJobCreated(_ context.Context, jobID int64) temporal.DispatchResult {
	f.jobIDs = append(f.jobIDs, jobID)
	return temporal.DispatchResult{Status: f.status, WorkflowID: temporal.JobWorkflowIDPrefix + "42"}
}

func (f *fakeDispatcher) DispatchBatch(_ context.Context, limit int) temporal.DispatchResult {
	f.batches = append(f.batches, limit)
	return temporal.DispatchResult{Status: f.status}
}

func newRequest(method, target, body string, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}
