package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stanstork/crewdispatch/internal/models"
)

type apiClient struct {
	http *resty.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})

	return &apiClient{http: client}
}

func (c *apiClient) scheduleAndAssign(limit int) (models.CombinedReport, error) {
	var report models.CombinedReport
	err := c.post("/api/schedule-jobs-assign-installers", limit, &report)
	return report, err
}

func (c *apiClient) assign(limit int) (models.BatchReport, error) {
	var report models.BatchReport
	err := c.post("/api/assignments/run", limit, &report)
	return report, err
}

func (c *apiClient) schedule(limit int) (models.ScheduleReport, error) {
	var report models.ScheduleReport
	err := c.post("/api/schedules/run", limit, &report)
	return report, err
}

// apiError is the JSON body of a run that stopped on an error.
type apiError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (c *apiClient) post(path string, limit int, result interface{}) error {
	var failure apiError
	resp, err := c.http.R().
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(result).
		SetError(&failure).
		Post(path)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	if resp.IsError() {
		if failure.Error != "" {
			return fmt.Errorf("request %s: %s: %s: %s", path, resp.Status(), failure.Error, failure.Details)
		}
		return fmt.Errorf("request %s: %s: %s", path, resp.Status(), resp.String())
	}
	return nil
}
